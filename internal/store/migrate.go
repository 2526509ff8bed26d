package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// migration is one forward-only schema step. Statements must be idempotent
// (IF NOT EXISTS and friends) because two cold-started invocations can race
// on the same id; the loser's ledger insert fails on the UNIQUE constraint
// and is ignored.
type migration struct {
	id    string
	stmts []string
}

// migrations is append-only. Never edit or reorder released entries.
var migrations = []migration{
	{
		id: "001_baseline",
		// Tables come from schema.sql; the baseline entry just seeds the ledger.
		stmts: nil,
	},
	{
		id: "002_records_owner_index",
		stmts: []string{
			"CREATE INDEX IF NOT EXISTS idx_records_owner ON records(owner_id)",
		},
	},
}

func (s *Store) runMigrations() error {
	for _, m := range migrations {
		applied, err := s.migrationApplied(m.id)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		for _, stmt := range m.stmts {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("migration %s: %w", m.id, err)
			}
		}

		if err := s.registerMigration(m.id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) migrationApplied(id string) (bool, error) {
	var found string
	err := s.db.QueryRow("SELECT id FROM schema_migrations WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", id, err)
	}
	return true, nil
}

func (s *Store) registerMigration(id string) error {
	_, err := s.db.Exec(
		"INSERT INTO schema_migrations (id, applied_at) VALUES (?, ?)",
		id, time.Now().UTC().Format(time.RFC3339),
	)
	if err == nil {
		return nil
	}

	// Benign race: another invocation registered the same id first. The
	// statements themselves are idempotent, so losing this insert is fine.
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return nil
	}
	return fmt.Errorf("register migration %s: %w", id, err)
}
