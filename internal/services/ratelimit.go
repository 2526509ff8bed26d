package services

import (
	"context"
	"time"

	"github.com/finlog-app/finlog/internal/models"
)

type bucketRLStore interface {
	Get(ctx context.Context, key string) (models.RateLimitBucket, bool, error)
	Reset(ctx context.Context, key string, resetAt time.Time) error
	Increment(ctx context.Context, key string) error
}

type rateLimiter struct {
	buckets bucketRLStore
	now     func() time.Time
}

// NewRateLimiter implements fixed-window counting. Coarser than a sliding
// window (up to 2x the limit can pass around a window boundary), which is
// fine for abuse mitigation. Every check performs one read and, off the
// deny path, one write.
func NewRateLimiter(buckets bucketRLStore) *rateLimiter {
	return &rateLimiter{buckets: buckets, now: time.Now}
}

// Check records one request against "bucket:identifier" and reports whether
// it is allowed. On deny, retryAfterSeconds is at least 1.
func (l *rateLimiter) Check(ctx context.Context, bucket, identifier string, limit int64, window time.Duration) (bool, int, error) {
	key := bucket + ":" + identifier
	now := l.now()

	row, ok, err := l.buckets.Get(ctx, key)
	if err != nil {
		return false, 0, err
	}

	if !ok || !now.Before(row.ResetAt) {
		if err := l.buckets.Reset(ctx, key, now.Add(window)); err != nil {
			return false, 0, err
		}
		return true, 0, nil
	}

	if row.Count >= limit {
		remaining := row.ResetAt.Sub(now)
		retry := int((remaining + time.Second - 1) / time.Second)
		if retry < 1 {
			retry = 1
		}
		return false, retry, nil
	}

	if err := l.buckets.Increment(ctx, key); err != nil {
		return false, 0, err
	}
	return true, 0, nil
}
