package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	// setupTestDB already migrated once; a second run must be a no-op.
	version, err := RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	for _, table := range []string{"tokens", "scheduled"} {
		var name string
		err := db.Reader.QueryRowContext(context.Background(),
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestNewDB_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slackpanel.db")
	ctx := context.Background()

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, path, db.Path())

	_, err = RunMigrations(db.Writer)
	require.NoError(t, err)

	var mode string
	require.NoError(t, db.Reader.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}
