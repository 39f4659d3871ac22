// Package sqlite owns the SQLite database shared by the credential store
// repositories: connection setup, schema migrations and the write lock.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/cryptotracker/internal/infra/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config holds configuration for the SQLite database.
type Config struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"PATH" envAlias:"DATABASE_FILE" default:"var/storage/cryptotracker.db"`

	// BusyTimeout is how long a statement waits on a locked database, in milliseconds
	BusyTimeout int `env:"BUSY_TIMEOUT" default:"5000"`
}

// DB wraps the connection pool with the write lock shared by all repositories.
type DB struct {
	*sql.DB

	writeLock sync.Mutex // go-sqlite does not support concurrent writes
	log       logging.Logger
}

// Open connects to the database described by cfg, creating the file and its
// parent directory if needed, and applies all pending migrations.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	log := logging.GetLogger("repo.sqlite.sqlite_db").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := migrate(ctx, db, log); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &DB{DB: db, log: log}, nil
}

// dsn builds a modernc.org/sqlite DSN. Pragmas are applied to every new
// connection of the pool, which matters for foreign_keys.
func dsn(cfg Config) string {
	query := url.Values{}
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout))
	query.Add("_pragma", "journal_mode(WAL)")

	return cfg.DatabasePath + "?" + query.Encode()
}

func migrate(ctx context.Context, db *sql.DB, log logging.Logger) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("new goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	for _, result := range results {
		log.InfoContext(ctx, "migration applied",
			"version", result.Source.Version,
			"file", result.Source.Path,
			"duration", result.Duration.String(),
		)
	}

	return nil
}

// ExecWrite runs a write statement while holding the write lock.
func (db *DB) ExecWrite(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db.writeLock.Lock()
	defer db.writeLock.Unlock()

	//nolint:wrapcheck
	return db.ExecContext(ctx, query, args...)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

// ConstraintCode returns the extended SQLite result code of a constraint
// violation, or 0 when err is not one.
func ConstraintCode(err error) int {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return 0
	}

	switch code := liteErr.Code(); code {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
		sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return code
	default:
		return 0
	}
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY violation.
func IsUniqueViolation(err error) bool {
	code := ConstraintCode(err)

	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// IsForeignKeyViolation reports whether err is a FOREIGN KEY violation.
func IsForeignKeyViolation(err error) bool {
	return ConstraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}
