// Package dedup filters candidate record batches against an existing record
// set before bulk insert. It is pure computation: no I/O, deterministic for
// a given input and reference time.
package dedup

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finlog-app/finlog/internal/errs"
	"github.com/finlog-app/finlog/internal/models"
)

// Result partitions one candidate batch. Received = Valid + Invalid and
// Valid = Duplicates + Added always hold.
type Result struct {
	Received   int
	Valid      int
	Invalid    int
	Duplicates int
	Added      int

	// Accepted holds the deduplicated records, each with a fresh identity.
	Accepted []models.Record
}

// Partition validates candidates, then rejects any whose idempotency key
// collides with an existing record or with an earlier accepted candidate in
// the same batch. now anchors the future-date check.
func Partition(existing []models.Record, candidates []models.Record, now time.Time) Result {
	res := Result{Received: len(candidates), Accepted: []models.Record{}}

	seen := make(map[string]bool, len(existing)+len(candidates))
	for _, rec := range existing {
		seen[Key(rec)] = true
	}

	today := now.Format(models.DateLayout)

	for _, cand := range candidates {
		if err := validate(cand, today); err != nil {
			res.Invalid++
			continue
		}
		res.Valid++

		key := Key(cand)
		if seen[key] {
			res.Duplicates++
			continue
		}
		seen[key] = true

		cand.ID = uuid.NewString()
		res.Accepted = append(res.Accepted, cand)
		res.Added++
	}

	return res
}

// Key is the normalized composite identity used for duplicate detection.
// Amounts go through decimal normalization so "12.10" and "12.1" collide.
func Key(rec models.Record) string {
	amount := decimal.NewFromFloat(rec.Amount).String()

	parts := []string{
		rec.Date,
		amount,
		string(rec.Kind),
		rec.EffectiveAccount(),
		rec.FromAccount + ">" + rec.ToAccount,
		strings.ToLower(strings.TrimSpace(rec.Notes)),
	}
	return strings.Join(parts, "|")
}

func validate(rec models.Record, today string) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	// String comparison is safe for zero-padded YYYY-MM-DD.
	if rec.Date > today {
		return errs.NewValidationError("date is in the future")
	}
	return nil
}
