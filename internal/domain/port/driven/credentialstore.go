package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
)

// ErrInvalidEncryptionKey is returned when a credential store is configured
// with a key that is not 32 bytes long.
var ErrInvalidEncryptionKey = errors.New("encryption key must be 32 bytes for AES-256-GCM")

// CredentialStore defines the driven port for the singleton bot credential.
// The adapter layer is responsible for any at-rest encryption; this interface
// operates on plaintext values at the domain boundary.
type CredentialStore interface {
	// Replace atomically discards any stored credential and stores cred in
	// its place. No merge with the previous record takes place.
	Replace(ctx context.Context, cred model.Credential) error

	// Get returns the active credential, or (nil, nil) if no workspace has
	// been authorized yet.
	Get(ctx context.Context) (*model.Credential, error)
}
