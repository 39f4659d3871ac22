package favorite

import "context"

// Repository defines the interface for favorite-symbol persistence.
// A user's favorites form a set; symbols are expected upper-case.
type Repository interface {
	// AddFavorite adds symbol to the user's set. Returns false if it was already there.
	// Returns ErrUserNotFound if the user does not exist.
	AddFavorite(ctx context.Context, userID int64, symbol string) (bool, error)

	// RemoveFavorite removes symbol from the user's set. Returns false if it was not there.
	RemoveFavorite(ctx context.Context, userID int64, symbol string) (bool, error)

	// ListFavorites returns the user's symbols in insertion order.
	ListFavorites(ctx context.Context, userID int64) ([]string, error)
}
