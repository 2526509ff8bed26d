// Package cache is the device-local mirror of the owner's records. Mutations
// apply in memory and hit the snapshot file before any network call runs;
// the server is mirrored afterwards by the syncer.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finlog-app/finlog/internal/dedup"
	"github.com/finlog-app/finlog/internal/models"
)

// SyncState is the device's view of its relationship with the server.
type SyncState string

const (
	StateIdle    SyncState = "idle"
	StateSyncing SyncState = "syncing"
	StateSynced  SyncState = "synced"
	StateError   SyncState = "error"
)

// snapshot is the durable on-disk form.
type snapshot struct {
	Records           []models.Record `json:"records"`
	LastSyncedVersion int64           `json:"lastSyncedVersion"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type Cache struct {
	mu    sync.Mutex
	file  *os.File
	snap  snapshot
	state SyncState
}

// Open loads the snapshot file, creating an empty one if absent.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open cache file: %w", err)
	}

	c := &Cache{file: f, state: StateIdle}
	if err := c.load(); err != nil {
		f.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) Close() error { return c.file.Close() }

func (c *Cache) load() error {
	info, err := c.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		c.snap = snapshot{Records: []models.Record{}, UpdatedAt: time.Now()}
		return c.flushLocked()
	}

	dec := json.NewDecoder(c.file)
	var snap snapshot
	if err := dec.Decode(&snap); err != nil {
		return fmt.Errorf("decode cache snapshot: %w", err)
	}
	if snap.Records == nil {
		snap.Records = []models.Record{}
	}
	c.snap = snap
	return nil
}

func (c *Cache) flushLocked() error {
	c.snap.UpdatedAt = time.Now()
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	enc := json.NewEncoder(c.file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&c.snap); err != nil {
		return err
	}
	// truncate in case new content is shorter
	pos, err := c.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := c.file.Truncate(pos); err != nil {
		return err
	}
	return c.file.Sync()
}

// Records returns a copy of the local list.
func (c *Cache) Records() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Record, len(c.snap.Records))
	copy(out, c.snap.Records)
	return out
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snap.Records)
}

func (c *Cache) LastSyncedVersion() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.LastSyncedVersion
}

func (c *Cache) State() SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cache) SetState(s SyncState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// MergeVersion adopts a server-reported version monotonically: the recorded
// value never regresses, whatever order responses arrive in.
func (c *Cache) MergeVersion(v int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v <= c.snap.LastSyncedVersion {
		return nil
	}
	c.snap.LastSyncedVersion = v
	return c.flushLocked()
}

// AdoptRemote replaces the local list and version with the server's snapshot
// (the adopt-remote reconciliation outcome).
func (c *Cache) AdoptRemote(items []models.Record, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if items == nil {
		items = []models.Record{}
	}
	c.snap.Records = items
	c.snap.LastSyncedVersion = version
	return c.flushLocked()
}

// Add prepends the record (most recent first) and persists. A missing id is
// assigned here so the same identity reaches the server later.
func (c *Cache) Add(rec models.Record) (models.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	c.snap.Records = append([]models.Record{rec}, c.snap.Records...)
	return rec, c.flushLocked()
}

// Update replaces the record with the given id. Unknown ids are ignored.
func (c *Cache) Update(id string, rec models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec.ID = id
	for i := range c.snap.Records {
		if c.snap.Records[i].ID == id {
			c.snap.Records[i] = rec
			return c.flushLocked()
		}
	}
	return nil
}

// Delete removes the record with the given id. Unknown ids are ignored.
func (c *Cache) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.snap.Records {
		if c.snap.Records[i].ID == id {
			c.snap.Records = append(c.snap.Records[:i], c.snap.Records[i+1:]...)
			return c.flushLocked()
		}
	}
	return nil
}

// Duplicate clones the record with the given id under a fresh identity.
func (c *Cache) Duplicate(id string) (models.Record, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.snap.Records {
		if rec.ID == id {
			clone := rec
			clone.ID = uuid.NewString()
			clone.CreatedAt = time.Time{}
			clone.UpdatedAt = time.Time{}
			c.snap.Records = append([]models.Record{clone}, c.snap.Records...)
			return clone, true, c.flushLocked()
		}
	}
	return models.Record{}, false, nil
}

// ReplaceAll swaps the whole local list.
func (c *Cache) ReplaceAll(records []models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if records == nil {
		records = []models.Record{}
	}
	c.snap.Records = records
	return c.flushLocked()
}

// ImportBatch deduplicates candidates against the current local list and
// applies the accepted ones. The report mirrors what the importer UI shows.
func (c *Cache) ImportBatch(candidates []models.Record, now time.Time) (dedup.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := dedup.Partition(c.snap.Records, candidates, now)
	if len(res.Accepted) == 0 {
		return res, nil
	}
	c.snap.Records = append(res.Accepted, c.snap.Records...)
	return res, c.flushLocked()
}
