package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	"github.com/mkrupp/cryptotracker/internal/repo/sqlite"
)

// SQLiteUserRepository implements Repository on the shared SQLite database.
type SQLiteUserRepository struct {
	db  *sqlite.DB
	log logging.Logger
}

var _ Repository = (*SQLiteUserRepository)(nil)

// NewSQLiteUserRepository creates a new SQLiteUserRepository. The schema is
// expected to be migrated by sqlite.Open.
func NewSQLiteUserRepository(db *sqlite.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		db:  db,
		log: logging.GetLogger("repo.user.sqlite_user_repository"),
	}
}

// CreateUser implements Repository.CreateUser. Uniqueness is enforced by the
// users.username constraint only, there is no prior existence check.
func (r *SQLiteUserRepository) CreateUser(ctx context.Context, username string, passwordHash []byte) (int64, error) {
	res, err := r.db.ExecWrite(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username,
		passwordHash,
		time.Now().Unix(),
	)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrUserAlreadyExists, err)
		}

		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	r.log.DebugContext(ctx, "user created", logging.Group("user", "id", id, "username", username))

	return id, nil
}

// GetUserByUsername implements Repository.GetUserByUsername.
func (r *SQLiteUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	var user domain.User

	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	return &user, true, nil
}
