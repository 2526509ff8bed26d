package dedup

import (
	"testing"
	"time"

	"github.com/finlog-app/finlog/internal/models"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func candidate(date string, amount float64, notes string) models.Record {
	return models.Record{
		Kind:     models.KindExpense,
		Amount:   amount,
		Date:     date,
		Category: "imported",
		Notes:    notes,
	}
}

func TestPartitionAcceptsFreshBatch(t *testing.T) {
	candidates := []models.Record{
		candidate("2025-06-01", 12.5, "Coffee Shop"),
		candidate("2025-06-02", 40, "Groceries"),
	}

	res := Partition(nil, candidates, testNow)

	if res.Received != 2 || res.Valid != 2 || res.Invalid != 0 || res.Duplicates != 0 || res.Added != 2 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if len(res.Accepted) != 2 {
		t.Fatalf("accepted %d records, want 2", len(res.Accepted))
	}
	for i, rec := range res.Accepted {
		if rec.ID == "" {
			t.Errorf("accepted[%d] has no assigned identity", i)
		}
	}
	if res.Accepted[0].ID == res.Accepted[1].ID {
		t.Errorf("accepted records share an identity")
	}
}

func TestPartitionSecondPassAddsNothing(t *testing.T) {
	candidates := []models.Record{
		candidate("2025-06-01", 12.5, "Coffee Shop"),
		candidate("2025-06-02", 40, "Groceries"),
		candidate("2025-06-03", 7.25, "Bus"),
	}

	first := Partition(nil, candidates, testNow)
	if first.Added != 3 {
		t.Fatalf("first pass added %d, want 3", first.Added)
	}

	second := Partition(first.Accepted, candidates, testNow)
	if second.Added != 0 {
		t.Fatalf("second pass added %d, want 0", second.Added)
	}
	if second.Duplicates != 3 {
		t.Fatalf("second pass duplicates = %d, want 3", second.Duplicates)
	}
}

func TestPartitionSelfDeduplicatesWithinBatch(t *testing.T) {
	candidates := []models.Record{
		candidate("2025-06-01", 12.5, "Coffee Shop"),
		candidate("2025-06-01", 12.5, "Coffee Shop"),
	}

	res := Partition(nil, candidates, testNow)
	if res.Added != 1 || res.Duplicates != 1 {
		t.Fatalf("self-dedup counts: %+v", res)
	}
}

func TestKeyNormalization(t *testing.T) {
	a := candidate("2025-06-01", 12.10, "  Coffee Shop  ")
	b := candidate("2025-06-01", 12.1, "coffee shop")
	if Key(a) != Key(b) {
		t.Fatalf("normalized keys differ:\n%s\n%s", Key(a), Key(b))
	}

	c := candidate("2025-06-01", 12.11, "coffee shop")
	if Key(a) == Key(c) {
		t.Fatalf("distinct amounts collided")
	}
}

func TestKeyUsesBaselineAccount(t *testing.T) {
	a := candidate("2025-06-01", 5, "snack")
	b := candidate("2025-06-01", 5, "snack")
	b.Account = models.DefaultAccount
	if Key(a) != Key(b) {
		t.Fatalf("unset account should normalize to the baseline account")
	}
}

func TestPartitionRejectsInvalidBeforeDuplicateCheck(t *testing.T) {
	badAmount := candidate("2025-06-01", -4, "refund gone wrong")
	badDate := candidate("06/01/2025", 4, "slashes")
	future := candidate("2025-07-01", 4, "not yet")
	badTransfer := models.Record{
		Kind:        models.KindTransfer,
		Amount:      10,
		Date:        "2025-06-01",
		FromAccount: "checking",
		ToAccount:   "checking",
	}
	ok := candidate("2025-06-01", 4, "fine")

	res := Partition(nil, []models.Record{badAmount, badDate, future, badTransfer, ok}, testNow)

	if res.Invalid != 4 {
		t.Fatalf("invalid = %d, want 4 (%+v)", res.Invalid, res)
	}
	if res.Valid != 1 || res.Added != 1 {
		t.Fatalf("valid/added = %d/%d, want 1/1", res.Valid, res.Added)
	}
	if res.Received != 5 {
		t.Fatalf("received = %d, want 5", res.Received)
	}
}

func TestPartitionTransferEndpointsInKey(t *testing.T) {
	out := models.Record{
		Kind:        models.KindTransfer,
		Amount:      100,
		Date:        "2025-06-01",
		FromAccount: "checking",
		ToAccount:   "savings",
	}
	back := out
	back.FromAccount, back.ToAccount = back.ToAccount, back.FromAccount

	res := Partition(nil, []models.Record{out, back}, testNow)
	if res.Added != 2 {
		t.Fatalf("opposite-direction transfers treated as duplicates: %+v", res)
	}
}
