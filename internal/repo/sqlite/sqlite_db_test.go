package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/cryptotracker/internal/repo/sqlite"
)

func openTestDB(t *testing.T) (*sqlite.DB, sqlite.Config) {
	t.Helper()

	cfg := sqlite.Config{
		DatabasePath: filepath.Join(t.TempDir(), "nested", "test.db"),
		BusyTimeout:  5000,
	}

	db, err := sqlite.Open(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db, cfg
}

func TestOpen_AppliesMigrations(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)

	for _, table := range []string{"users", "favorites"} {
		var name string

		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	t.Parallel()

	db, cfg := openTestDB(t)
	require.NoError(t, db.Close())

	again, err := sqlite.Open(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestConstraintErrors(t *testing.T) {
	t.Parallel()

	db, _ := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecWrite(ctx, "INSERT INTO users (username, password_hash, created_at) VALUES ('a', x'00', 0)")
	require.NoError(t, err)

	_, err = db.ExecWrite(ctx, "INSERT INTO users (username, password_hash, created_at) VALUES ('a', x'00', 0)")
	require.Error(t, err)
	assert.True(t, sqlite.IsUniqueViolation(err))
	assert.False(t, sqlite.IsForeignKeyViolation(err))

	_, err = db.ExecWrite(ctx, "INSERT INTO favorites (user_id, symbol, created_at) VALUES (999, 'BTC', 0)")
	require.Error(t, err, "foreign keys must be enforced")
	assert.True(t, sqlite.IsForeignKeyViolation(err))

	assert.Equal(t, 0, sqlite.ConstraintCode(assert.AnError))
}
