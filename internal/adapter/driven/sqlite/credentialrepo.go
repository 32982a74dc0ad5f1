package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
	"github.com/ericfisherdev/slackpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// encryptedPrefix marks bot tokens sealed with AES-256-GCM so that rows written
// before a key was configured can still be read back.
const encryptedPrefix = "enc:v1:"

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// The tokens table holds at most one row. When a key is configured the bot
// token is encrypted with AES-256-GCM before write and decrypted after read.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil stores the token as-is.
}

// NewCredentialRepo creates a new CredentialRepo. key must be nil or 32 bytes.
func NewCredentialRepo(db *DB, key []byte) (*CredentialRepo, error) {
	if key != nil && len(key) != 32 {
		return nil, driven.ErrInvalidEncryptionKey
	}
	return &CredentialRepo{db: db, key: key}, nil
}

// Replace deletes any stored credential and inserts cred in a single
// transaction, so readers never observe zero or two rows.
func (r *CredentialRepo) Replace(ctx context.Context, cred model.Credential) error {
	token, err := r.seal(cred.BotToken)
	if err != nil {
		return err
	}

	obtainedAt := cred.ObtainedAt
	if obtainedAt.IsZero() {
		obtainedAt = time.Now()
	}

	var teamName sql.NullString
	if cred.TeamName != "" {
		teamName = sql.NullString{String: cred.TeamName, Valid: true}
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace credential: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if _, err := tx.ExecContext(ctx, `DELETE FROM tokens`); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}

	const insert = `INSERT INTO tokens (bot_token, scope, team_id, team_name, app_id, obtained_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert,
		token, cred.Scope, cred.TeamID, teamName, cred.AppID, obtainedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace credential: %w", err)
	}
	return nil
}

// Get returns the stored credential, or (nil, nil) if none has been stored.
func (r *CredentialRepo) Get(ctx context.Context) (*model.Credential, error) {
	const query = `SELECT bot_token, scope, team_id, team_name, app_id, obtained_at
		FROM tokens ORDER BY id DESC LIMIT 1`

	var (
		cred       model.Credential
		stored     string
		teamName   sql.NullString
		obtainedAt int64
	)
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(
		&stored, &cred.Scope, &cred.TeamID, &teamName, &cred.AppID, &obtainedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}

	cred.BotToken, err = r.open(stored)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential: %w", err)
	}
	cred.TeamName = teamName.String
	cred.ObtainedAt = time.UnixMilli(obtainedAt).UTC()

	return &cred, nil
}

// seal encrypts plaintext using AES-256-GCM and returns the prefixed base64
// encoding of nonce || ciphertext || tag. Without a key plaintext is returned.
func (r *CredentialRepo) seal(plaintext string) (string, error) {
	if r.key == nil {
		return plaintext, nil
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// open reverses seal. Values without the encrypted prefix are returned as-is.
func (r *CredentialRepo) open(stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, encryptedPrefix)
	if !ok {
		return stored, nil
	}
	if r.key == nil {
		return "", errors.New("stored token is encrypted but no key is configured")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *CredentialRepo) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
