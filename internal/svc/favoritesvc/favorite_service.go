package favoritesvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	"github.com/mkrupp/cryptotracker/internal/repo/favorite"
)

// FavoriteService manages each user's set of favorite symbols.
type FavoriteService struct {
	Repo favorite.Repository
	Log  logging.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(repo favorite.Repository) *FavoriteService {
	return &FavoriteService{
		Repo: repo,
		Log:  logging.GetLogger("svc.favoritesvc.favorite_service"),
	}
}

// Add stores symbol in the user's favorites. Adding a symbol twice is a no-op;
// the result reports whether anything changed.
func (s *FavoriteService) Add(ctx context.Context, userID int64, symbol string) (bool, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return false, domain.ErrSymbolRequired
	}

	added, err := s.Repo.AddFavorite(ctx, userID, symbol)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}

	s.Log.DebugContext(ctx, "favorite added", "symbol", symbol, "added", added)

	return added, nil
}

// Remove deletes symbol from the user's favorites.
func (s *FavoriteService) Remove(ctx context.Context, userID int64, symbol string) (bool, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return false, domain.ErrSymbolRequired
	}

	removed, err := s.Repo.RemoveFavorite(ctx, userID, symbol)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}

	s.Log.DebugContext(ctx, "favorite removed", "symbol", symbol, "removed", removed)

	return removed, nil
}

// List returns the user's favorite symbols in the order they were added.
func (s *FavoriteService) List(ctx context.Context, userID int64) ([]string, error) {
	symbols, err := s.Repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	return symbols, nil
}
