// Package sqlite provides the SQLite-backed changelog for docsync.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Wait up to 5 seconds on lock contention, e.g. a concurrent commit
	// from another process.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// Path returns the database path.
func (db *DB) Path() string {
	return db.path
}

// createSchema creates the database tables if they don't exist.
// The changelog is append-only; seq preserves insertion order.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS changelog (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			message TEXT NOT NULL,
			added INTEGER NOT NULL DEFAULT 0 CHECK (added >= 0),
			modified INTEGER NOT NULL DEFAULT 0 CHECK (modified >= 0),
			deleted INTEGER NOT NULL DEFAULT 0 CHECK (deleted >= 0),
			failed INTEGER NOT NULL DEFAULT 0 CHECK (failed >= 0),
			created_at TEXT NOT NULL
		);

		CREATE TRIGGER IF NOT EXISTS changelog_no_update
		BEFORE UPDATE ON changelog
		BEGIN
			SELECT RAISE(ABORT, 'changelog is append-only');
		END;

		CREATE TRIGGER IF NOT EXISTS changelog_no_delete
		BEFORE DELETE ON changelog
		BEGIN
			SELECT RAISE(ABORT, 'changelog is append-only');
		END;
	`

	_, err := db.db.Exec(schema)
	return err
}
