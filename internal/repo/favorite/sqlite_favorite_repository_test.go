package favorite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/repo/favorite"
	"github.com/mkrupp/cryptotracker/internal/repo/sqlite"
	"github.com/mkrupp/cryptotracker/internal/repo/user"
)

func setup(t *testing.T) (*favorite.SQLiteFavoriteRepository, int64, int64) {
	t.Helper()

	ctx := context.Background()

	db, err := sqlite.Open(ctx, sqlite.Config{
		DatabasePath: filepath.Join(t.TempDir(), "favorites.db"),
		BusyTimeout:  5000,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	users := user.NewSQLiteUserRepository(db)

	alice, err := users.CreateUser(ctx, "alice", []byte("x"))
	require.NoError(t, err)

	bob, err := users.CreateUser(ctx, "bob", []byte("x"))
	require.NoError(t, err)

	return favorite.NewSQLiteFavoriteRepository(db), alice, bob
}

func TestSQLiteFavoriteRepository_SetSemantics(t *testing.T) {
	t.Parallel()

	repo, alice, bob := setup(t)
	ctx := context.Background()

	for _, symbol := range []string{"BTC", "ETH", "SOL"} {
		added, err := repo.AddFavorite(ctx, alice, symbol)
		require.NoError(t, err)
		assert.True(t, added)
	}

	added, err := repo.AddFavorite(ctx, alice, "BTC")
	require.NoError(t, err)
	assert.False(t, added, "duplicate add is a no-op")

	got, err := repo.ListFavorites(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, got, "insertion order")

	got, err = repo.ListFavorites(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSQLiteFavoriteRepository_Remove(t *testing.T) {
	t.Parallel()

	repo, alice, _ := setup(t)
	ctx := context.Background()

	_, err := repo.AddFavorite(ctx, alice, "BTC")
	require.NoError(t, err)
	_, err = repo.AddFavorite(ctx, alice, "ETH")
	require.NoError(t, err)

	removed, err := repo.RemoveFavorite(ctx, alice, "BTC")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveFavorite(ctx, alice, "BTC")
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := repo.ListFavorites(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"ETH"}, got)

	// re-adding goes to the end
	_, err = repo.AddFavorite(ctx, alice, "BTC")
	require.NoError(t, err)

	got, err = repo.ListFavorites(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"ETH", "BTC"}, got)
}

func TestSQLiteFavoriteRepository_UnknownUser(t *testing.T) {
	t.Parallel()

	repo, _, _ := setup(t)

	_, err := repo.AddFavorite(context.Background(), 9999, "BTC")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
