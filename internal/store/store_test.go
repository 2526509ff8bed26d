package store

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		if err := s.EnsureSchema(); err != nil {
			t.Fatalf("EnsureSchema() iteration %d failed: %v", i, err)
		}
		// Repeat call on the same store hits the latch.
		if err := s.EnsureSchema(); err != nil {
			t.Fatalf("latched EnsureSchema() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()
	if err := s.EnsureSchema(); err != nil {
		t.Fatalf("final EnsureSchema() failed: %v", err)
	}

	tables := []string{"records", "owner_versions", "rate_limits", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestMigrationLedgerRecordsIDs(t *testing.T) {
	s := openTestStore(t)

	rows, err := s.db.Query("SELECT id FROM schema_migrations ORDER BY id")
	if err != nil {
		t.Fatalf("query migrations: %v", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan migration id: %v", err)
		}
		ids = append(ids, id)
	}

	if len(ids) != len(migrations) {
		t.Fatalf("ledger has %d entries, want %d", len(ids), len(migrations))
	}
	for i, m := range migrations {
		if ids[i] != m.id {
			t.Errorf("ledger entry %d = %q, want %q", i, ids[i], m.id)
		}
	}
}

func TestRegisterMigrationBenignRace(t *testing.T) {
	s := openTestStore(t)

	// A second registration of an already-applied id must be swallowed,
	// mirroring two cold starts racing on the same migration.
	if err := s.registerMigration(migrations[0].id); err != nil {
		t.Fatalf("duplicate migration registration returned error: %v", err)
	}
}
