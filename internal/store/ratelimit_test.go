package store

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitBucketLifecycle(t *testing.T) {
	s := openTestStore(t)
	buckets := NewRateLimitStore(s)
	ctx := context.Background()

	_, ok, err := buckets.Get(ctx, "signin:1.2.3.4")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("unexpected bucket before Reset")
	}

	resetAt := time.Now().Add(time.Minute).Truncate(time.Millisecond)
	if err := buckets.Reset(ctx, "signin:1.2.3.4", resetAt); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	row, ok, err := buckets.Get(ctx, "signin:1.2.3.4")
	if err != nil {
		t.Fatalf("Get after Reset: %v", err)
	}
	if !ok || row.Count != 1 {
		t.Fatalf("bucket after Reset = %+v ok=%v, want count 1", row, ok)
	}
	if !row.ResetAt.Equal(resetAt) {
		t.Fatalf("ResetAt = %v, want %v", row.ResetAt, resetAt)
	}

	for i := 0; i < 3; i++ {
		if err := buckets.Increment(ctx, "signin:1.2.3.4"); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	row, _, err = buckets.Get(ctx, "signin:1.2.3.4")
	if err != nil {
		t.Fatalf("Get after increments: %v", err)
	}
	if row.Count != 4 {
		t.Fatalf("count = %d, want 4", row.Count)
	}

	// Reset overwrites an existing bucket back to 1.
	later := resetAt.Add(time.Minute)
	if err := buckets.Reset(ctx, "signin:1.2.3.4", later); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
	row, _, err = buckets.Get(ctx, "signin:1.2.3.4")
	if err != nil {
		t.Fatalf("Get after second Reset: %v", err)
	}
	if row.Count != 1 || !row.ResetAt.Equal(later) {
		t.Fatalf("bucket after second Reset = %+v", row)
	}
}
