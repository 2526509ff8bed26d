package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides the durable authoritative state: record rows, per-owner
// version counters, rate-limit buckets, and the migration ledger.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

// Open creates or opens a SQLite database at the given path and applies the
// required pragmas. Callers must invoke EnsureSchema before first use; Open
// does not touch tables so that cold-start schema work stays an explicit,
// observable step.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY under concurrent request handling.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	return &Store{db: db}, nil
}

// EnsureSchema creates tables if absent and applies pending migrations from
// the append-only migration list. Idempotent; a one-time latch makes repeat
// calls within the same process free. Safe to call from every request entry.
func (s *Store) EnsureSchema() error {
	s.schemaOnce.Do(func() {
		if _, err := s.db.Exec(schemaSQL); err != nil {
			s.schemaErr = fmt.Errorf("execute schema: %w", err)
			return
		}
		s.schemaErr = s.runMigrations()
	})
	return s.schemaErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}
