package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finlog-app/finlog/internal/errs"
	"github.com/finlog-app/finlog/internal/models"
)

type rateLimitStore struct {
	store *Store
}

// NewRateLimitStore returns the fixed-window bucket rows. Instants are stored
// as Unix milliseconds.
func NewRateLimitStore(store *Store) *rateLimitStore {
	return &rateLimitStore{store: store}
}

// Get returns the bucket for the key, or ok=false if none exists.
func (s *rateLimitStore) Get(ctx context.Context, key string) (models.RateLimitBucket, bool, error) {
	var (
		count   int64
		resetAt int64
	)
	err := s.store.db.QueryRowContext(ctx,
		"SELECT count, reset_at FROM rate_limits WHERE key = ?", key,
	).Scan(&count, &resetAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RateLimitBucket{}, false, nil
	}
	if err != nil {
		return models.RateLimitBucket{}, false, errs.NewDatabaseError("get rate bucket", err)
	}
	return models.RateLimitBucket{
		Key:     key,
		Count:   count,
		ResetAt: time.UnixMilli(resetAt),
	}, true, nil
}

// Reset overwrites the bucket with count=1 and a fresh window end.
func (s *rateLimitStore) Reset(ctx context.Context, key string, resetAt time.Time) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO rate_limits (key, count, reset_at) VALUES (?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET count = 1, reset_at = excluded.reset_at
	`, key, resetAt.UnixMilli())
	if err != nil {
		return errs.NewDatabaseError("reset rate bucket", err)
	}
	return nil
}

// Increment adds one request to an existing bucket.
func (s *rateLimitStore) Increment(ctx context.Context, key string) error {
	_, err := s.store.db.ExecContext(ctx,
		"UPDATE rate_limits SET count = count + 1 WHERE key = ?", key)
	if err != nil {
		return errs.NewDatabaseError("increment rate bucket", err)
	}
	return nil
}
