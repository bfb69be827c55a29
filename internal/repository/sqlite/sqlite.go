package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mwhitlock/todo-backend/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection and hands out the repository
// implementations backed by it.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Enable foreign key enforcement.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// SQLite permits a single writer; serializing through one connection
	// also makes the order-assignment transaction race-free.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB)
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}

// Users returns the SQLite-backed user repository.
func (db *DB) Users() *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

// Todos returns the SQLite-backed todo repository.
func (db *DB) Todos() *TodoRepository {
	return &TodoRepository{db: db.SqlDB}
}

// Tokens returns the SQLite-backed token revocation repository.
func (db *DB) Tokens() *TokenRepository {
	return &TokenRepository{db: db.SqlDB}
}
