package favorite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	"github.com/mkrupp/cryptotracker/internal/repo/sqlite"
)

// SQLiteFavoriteRepository implements Repository on the shared SQLite database.
type SQLiteFavoriteRepository struct {
	db  *sqlite.DB
	log logging.Logger
}

var _ Repository = (*SQLiteFavoriteRepository)(nil)

// NewSQLiteFavoriteRepository creates a new SQLiteFavoriteRepository.
func NewSQLiteFavoriteRepository(db *sqlite.DB) *SQLiteFavoriteRepository {
	return &SQLiteFavoriteRepository{
		db:  db,
		log: logging.GetLogger("repo.favorite.sqlite_favorite_repository"),
	}
}

// AddFavorite implements Repository.AddFavorite.
func (r *SQLiteFavoriteRepository) AddFavorite(ctx context.Context, userID int64, symbol string) (bool, error) {
	res, err := r.db.ExecWrite(ctx,
		"INSERT INTO favorites (user_id, symbol, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, symbol) DO NOTHING",
		userID,
		symbol,
		time.Now().Unix(),
	)
	if err != nil {
		if sqlite.IsForeignKeyViolation(err) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return false, fmt.Errorf("insert favorite: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return n > 0, nil
}

// RemoveFavorite implements Repository.RemoveFavorite.
func (r *SQLiteFavoriteRepository) RemoveFavorite(ctx context.Context, userID int64, symbol string) (bool, error) {
	res, err := r.db.ExecWrite(ctx,
		"DELETE FROM favorites WHERE user_id = ? AND symbol = ?",
		userID,
		symbol,
	)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return n > 0, nil
}

// ListFavorites implements Repository.ListFavorites.
func (r *SQLiteFavoriteRepository) ListFavorites(ctx context.Context, userID int64) (_ []string, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT symbol FROM favorites WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}

	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	symbols := make([]string, 0)

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}

		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return symbols, nil
}
