package models

import "time"

// RateLimitBucket is one fixed-window counter row, keyed "bucket:identifier".
type RateLimitBucket struct {
	Key     string    `json:"key"`
	Count   int64     `json:"count"`
	ResetAt time.Time `json:"resetAt"`
}
