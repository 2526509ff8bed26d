package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finlog-app/finlog/internal/errs"
)

type versionStore struct {
	store *Store
}

// NewVersionStore returns the per-owner monotonic counter backed by the
// owner_versions table.
func NewVersionStore(store *Store) *versionStore {
	return &versionStore{store: store}
}

// Bump atomically creates-or-increments the owner's counter and returns the
// new value. A single upsert statement serializes concurrent bumps at the
// storage layer; two invocations can never observe the same pre-increment
// value.
func (s *versionStore) Bump(ctx context.Context, ownerID string) (int64, error) {
	var version int64
	err := s.store.db.QueryRowContext(ctx, `
		INSERT INTO owner_versions (owner_id, version, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			version = version + 1,
			updated_at = excluded.updated_at
		RETURNING version
	`, ownerID, time.Now().UTC().Format(time.RFC3339Nano)).Scan(&version)
	if err != nil {
		return 0, errs.NewDatabaseError("bump version", err)
	}
	return version, nil
}

// Read returns the owner's current version, 0 if the owner never mutated data.
func (s *versionStore) Read(ctx context.Context, ownerID string) (int64, error) {
	var version int64
	err := s.store.db.QueryRowContext(ctx,
		"SELECT version FROM owner_versions WHERE owner_id = ?", ownerID,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errs.NewDatabaseError("read version", err)
	}
	return version, nil
}
