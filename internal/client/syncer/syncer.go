// Package syncer keeps the device cache and the authoritative store
// consistent: one reconciliation pass at session start, then a mirrored
// remote write per local mutation.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/finlog-app/finlog/internal/client/cache"
	"github.com/finlog-app/finlog/internal/dedup"
	"github.com/finlog-app/finlog/internal/dto"
	"github.com/finlog-app/finlog/internal/models"
	"github.com/finlog-app/finlog/pkg/logger"
)

// API is the slice of the records surface the syncer needs.
type API interface {
	List(ctx context.Context, filters dto.ListFilters) (dto.ListRecordsResponse, error)
	Create(ctx context.Context, rec models.Record) (dto.MutationResponse, error)
	Update(ctx context.Context, id string, rec models.Record) (dto.MutationResponse, error)
	Delete(ctx context.Context, id string) (dto.MutationResponse, error)
	DeleteAll(ctx context.Context) (dto.MutationResponse, error)
	CreateBatch(ctx context.Context, records []models.Record) (dto.BatchResponse, error)
	ReplaceAll(ctx context.Context, records []models.Record) (dto.BatchResponse, error)
}

type Syncer struct {
	api   API
	cache *cache.Cache

	mu       sync.Mutex
	canceled bool
}

func New(api API, c *cache.Cache) *Syncer {
	return &Syncer{api: api, cache: c}
}

// Cancel marks any in-flight reconciliation as abandoned; its results are
// dropped instead of being applied to torn-down state.
func (s *Syncer) Cancel() {
	s.mu.Lock()
	s.canceled = true
	s.mu.Unlock()
}

func (s *Syncer) isCanceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

// Reconcile runs once per session start and decides whether to trust the
// local cache or the remote store:
//
//  1. fetch fails            -> keep local state, state=error, caller retries
//  2. remote version stale   -> drop the response (slow request finished late)
//  3. remote empty, local not -> seed the server with the full local list
//  4. otherwise              -> adopt the remote snapshot
func (s *Syncer) Reconcile(ctx context.Context) error {
	log := logger.FromContext(ctx)
	s.cache.SetState(cache.StateSyncing)

	resp, err := s.api.List(ctx, dto.ListFilters{})
	if err != nil {
		s.cache.SetState(cache.StateError)
		log.Warn("reconciliation fetch failed", "error", err)
		return err
	}

	if s.isCanceled() {
		log.Debug("reconciliation canceled, dropping fetch result")
		return nil
	}

	if resp.Version < s.cache.LastSyncedVersion() {
		// A slower, earlier request completed after a faster later one.
		// Discard it without touching state; the in-flight newer pass owns
		// the state transition.
		log.Debug("stale reconciliation response ignored",
			"remote_version", resp.Version,
			"last_synced_version", s.cache.LastSyncedVersion())
		return nil
	}

	local := s.cache.Records()
	if len(resp.Items) == 0 && len(local) > 0 {
		// Server has never seen this device's data: upload it as-is.
		// Indistinguishable from "everything was deleted elsewhere"; that
		// ambiguity is part of the protocol's contract.
		batch, err := s.api.CreateBatch(ctx, local)
		if err != nil {
			s.cache.SetState(cache.StateError)
			log.Warn("seed upload failed", "error", err)
			return err
		}
		// The upload is a second round-trip; the caller may have gone away
		// while it ran.
		if s.isCanceled() {
			log.Debug("reconciliation canceled, dropping seed result")
			return nil
		}
		if err := s.cache.MergeVersion(batch.Version); err != nil {
			return err
		}
		s.cache.SetState(cache.StateSynced)
		log.Info("seeded server from local cache", "count", len(local), "version", batch.Version)
		return nil
	}

	if err := s.cache.AdoptRemote(resp.Items, resp.Version); err != nil {
		return err
	}
	s.cache.SetState(cache.StateSynced)
	log.Info("adopted remote snapshot", "count", len(resp.Items), "version", resp.Version)
	return nil
}

// The mutation helpers below apply locally first (the UI never waits on the
// network), then mirror remotely. Remote failure surfaces as StateError and
// is never rolled back locally. Callers typically run the mirror leg from a
// goroutine; the version merge is monotonic so arrival order is irrelevant.

func (s *Syncer) Add(ctx context.Context, rec models.Record) (models.Record, error) {
	rec, err := s.cache.Add(rec)
	if err != nil {
		return rec, err
	}
	resp, err := s.api.Create(ctx, rec)
	return rec, s.applyMutationResult(ctx, resp.Version, err)
}

func (s *Syncer) Update(ctx context.Context, id string, rec models.Record) error {
	if err := s.cache.Update(id, rec); err != nil {
		return err
	}
	resp, err := s.api.Update(ctx, id, rec)
	return s.applyMutationResult(ctx, resp.Version, err)
}

func (s *Syncer) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(id); err != nil {
		return err
	}
	resp, err := s.api.Delete(ctx, id)
	return s.applyMutationResult(ctx, resp.Version, err)
}

func (s *Syncer) DeleteAll(ctx context.Context) error {
	if err := s.cache.ReplaceAll(nil); err != nil {
		return err
	}
	resp, err := s.api.DeleteAll(ctx)
	return s.applyMutationResult(ctx, resp.Version, err)
}

func (s *Syncer) Duplicate(ctx context.Context, id string) (models.Record, bool, error) {
	clone, ok, err := s.cache.Duplicate(id)
	if err != nil || !ok {
		return clone, ok, err
	}
	resp, err := s.api.Create(ctx, clone)
	return clone, true, s.applyMutationResult(ctx, resp.Version, err)
}

// ImportBatch deduplicates locally, then mirrors only the accepted records.
func (s *Syncer) ImportBatch(ctx context.Context, candidates []models.Record, now time.Time) (dedup.Result, error) {
	res, err := s.cache.ImportBatch(candidates, now)
	if err != nil {
		return res, err
	}
	if len(res.Accepted) == 0 {
		return res, nil
	}
	resp, err := s.api.CreateBatch(ctx, res.Accepted)
	return res, s.applyMutationResult(ctx, resp.Version, err)
}

func (s *Syncer) ReplaceAll(ctx context.Context, records []models.Record) error {
	if err := s.cache.ReplaceAll(records); err != nil {
		return err
	}
	resp, err := s.api.ReplaceAll(ctx, records)
	return s.applyMutationResult(ctx, resp.Version, err)
}

func (s *Syncer) applyMutationResult(ctx context.Context, version int64, err error) error {
	if err != nil {
		// Local state stays as the user wrote it; only the indicator flips.
		s.cache.SetState(cache.StateError)
		logger.FromContext(ctx).Warn("mirrored mutation failed", "error", err)
		return err
	}
	if mergeErr := s.cache.MergeVersion(version); mergeErr != nil {
		return mergeErr
	}
	s.cache.SetState(cache.StateSynced)
	return nil
}
