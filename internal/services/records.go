package services

import (
	"context"

	"github.com/finlog-app/finlog/internal/dto"
	"github.com/finlog-app/finlog/internal/models"
	"github.com/finlog-app/finlog/pkg/logger"
)

type recordRSStore interface {
	List(ctx context.Context, ownerID string, filters dto.ListFilters) ([]models.Record, error)
	Upsert(ctx context.Context, rec models.Record) error
	Delete(ctx context.Context, ownerID, id string) error
	DeleteAll(ctx context.Context, ownerID string) error
	InsertBatch(ctx context.Context, records []models.Record) error
	ReplaceAll(ctx context.Context, ownerID string, records []models.Record) error
}

type versionRSStore interface {
	Bump(ctx context.Context, ownerID string) (int64, error)
	Read(ctx context.Context, ownerID string) (int64, error)
}

type recordService struct {
	records  recordRSStore
	versions versionRSStore
}

// NewRecordService couples every committed mutation to exactly one version
// bump for the owner. Reads never bump.
func NewRecordService(records recordRSStore, versions versionRSStore) *recordService {
	return &recordService{
		records:  records,
		versions: versions,
	}
}

func (s *recordService) List(ctx context.Context, ownerID string, filters dto.ListFilters) (dto.ListRecordsResponse, error) {
	items, err := s.records.List(ctx, ownerID, filters)
	if err != nil {
		return dto.ListRecordsResponse{}, err
	}
	version, err := s.versions.Read(ctx, ownerID)
	if err != nil {
		return dto.ListRecordsResponse{}, err
	}
	return dto.ListRecordsResponse{Items: items, Version: version}, nil
}

func (s *recordService) Create(ctx context.Context, ownerID string, rec models.Record) (int64, error) {
	log, ctx := logger.With(ctx, "owner_id", ownerID)

	rec.OwnerID = ownerID
	if err := s.records.Upsert(ctx, rec); err != nil {
		return 0, err
	}
	version, err := s.versions.Bump(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	log.Info("record created", "record_id", rec.ID, "version", version)
	return version, nil
}

func (s *recordService) Update(ctx context.Context, ownerID, id string, rec models.Record) (int64, error) {
	rec.ID = id
	rec.OwnerID = ownerID
	if err := s.records.Upsert(ctx, rec); err != nil {
		return 0, err
	}
	return s.versions.Bump(ctx, ownerID)
}

// Delete bumps the version even when the id does not exist for the owner.
// Replays and deletes of already-gone rows still advance the counter.
func (s *recordService) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	if err := s.records.Delete(ctx, ownerID, id); err != nil {
		return 0, err
	}
	return s.versions.Bump(ctx, ownerID)
}

func (s *recordService) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	log, ctx := logger.With(ctx, "owner_id", ownerID)

	if err := s.records.DeleteAll(ctx, ownerID); err != nil {
		return 0, err
	}
	version, err := s.versions.Bump(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	log.Info("all records deleted", "version", version)
	return version, nil
}

// CreateBatch inserts every record unconditionally with a single version bump
// for the whole batch. Dedup is the importer's job before this call.
func (s *recordService) CreateBatch(ctx context.Context, ownerID string, records []models.Record) (int64, int, error) {
	log, ctx := logger.With(ctx, "owner_id", ownerID)

	for i := range records {
		records[i].OwnerID = ownerID
	}
	if err := s.records.InsertBatch(ctx, records); err != nil {
		return 0, 0, err
	}
	version, err := s.versions.Bump(ctx, ownerID)
	if err != nil {
		return 0, 0, err
	}

	log.Info("batch created", "count", len(records), "version", version)
	return version, len(records), nil
}

// ReplaceAll swaps the owner's entire record set in one transaction. Used by
// the reconciliation upload path and full-dataset import.
func (s *recordService) ReplaceAll(ctx context.Context, ownerID string, records []models.Record) (int64, int, error) {
	log, ctx := logger.With(ctx, "owner_id", ownerID)

	for i := range records {
		records[i].OwnerID = ownerID
	}
	if err := s.records.ReplaceAll(ctx, ownerID, records); err != nil {
		return 0, 0, err
	}
	version, err := s.versions.Bump(ctx, ownerID)
	if err != nil {
		return 0, 0, err
	}

	log.Info("record set replaced", "count", len(records), "version", version)
	return version, len(records), nil
}
