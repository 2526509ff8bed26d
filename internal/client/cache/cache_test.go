package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/finlog-app/finlog/internal/models"
)

func testRecord(id, date string) models.Record {
	return models.Record{
		ID:       id,
		Kind:     models.KindExpense,
		Amount:   5,
		Date:     date,
		Category: "misc",
	}
}

func TestCachePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "finlog.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := c.Add(testRecord("r1", "2025-05-01")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.MergeVersion(4); err != nil {
		t.Fatalf("MergeVersion: %v", err)
	}
	c.Close()

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()

	if c2.Len() != 1 {
		t.Fatalf("reopened cache has %d records, want 1", c2.Len())
	}
	if c2.LastSyncedVersion() != 4 {
		t.Fatalf("reopened lastSyncedVersion = %d, want 4", c2.LastSyncedVersion())
	}
	if got := c2.Records()[0].ID; got != "r1" {
		t.Fatalf("reopened record id = %s, want r1", got)
	}
}

func TestMergeVersionIsMonotonic(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "finlog.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	// Out-of-order mutation responses must never move the version backward.
	for _, v := range []int64{3, 7, 5, 2, 7, 9, 1} {
		if err := c.MergeVersion(v); err != nil {
			t.Fatalf("MergeVersion(%d): %v", v, err)
		}
	}
	if c.LastSyncedVersion() != 9 {
		t.Fatalf("lastSyncedVersion = %d, want 9", c.LastSyncedVersion())
	}
}

func TestCacheAddAssignsIdentity(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "finlog.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	rec := testRecord("", "2025-05-01")
	added, err := c.Add(rec)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" {
		t.Fatalf("Add left the identity empty")
	}
}

func TestCacheUpdateAndDelete(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "finlog.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, err := c.Add(testRecord("r1", "2025-05-01")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated := testRecord("r1", "2025-05-02")
	updated.Amount = 42
	if err := c.Update("r1", updated); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := c.Records()[0]; got.Amount != 42 || got.Date != "2025-05-02" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := c.Delete("r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("delete left %d records", c.Len())
	}

	// Unknown ids are no-ops.
	if err := c.Delete("ghost"); err != nil {
		t.Fatalf("Delete of unknown id: %v", err)
	}
}

func TestCacheDuplicate(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "finlog.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, err := c.Add(testRecord("r1", "2025-05-01")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	clone, ok, err := c.Duplicate("r1")
	if err != nil || !ok {
		t.Fatalf("Duplicate: ok=%v err=%v", ok, err)
	}
	if clone.ID == "" || clone.ID == "r1" {
		t.Fatalf("clone identity = %q", clone.ID)
	}
	if clone.Date != "2025-05-01" || clone.Amount != 5 {
		t.Fatalf("clone content drifted: %+v", clone)
	}
	if c.Len() != 2 {
		t.Fatalf("cache has %d records after duplicate, want 2", c.Len())
	}

	if _, ok, _ := c.Duplicate("ghost"); ok {
		t.Fatalf("Duplicate of unknown id reported ok")
	}
}

func TestCacheImportBatchDeduplicates(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "finlog.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	batch := []models.Record{
		testRecord("", "2025-06-01"),
		testRecord("", "2025-06-01"),
	}

	res, err := c.ImportBatch(batch, now)
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if res.Added != 1 || res.Duplicates != 1 {
		t.Fatalf("import counts: %+v", res)
	}
	if c.Len() != 1 {
		t.Fatalf("cache has %d records after import, want 1", c.Len())
	}

	// Re-importing the same statement adds nothing.
	res, err = c.ImportBatch(batch, now)
	if err != nil {
		t.Fatalf("second ImportBatch: %v", err)
	}
	if res.Added != 0 {
		t.Fatalf("re-import added %d records", res.Added)
	}
}
