package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finlog-app/finlog/internal/dto"
	"github.com/finlog-app/finlog/internal/errs"
	"github.com/finlog-app/finlog/internal/middleware"
	"github.com/finlog-app/finlog/internal/models"
	"github.com/finlog-app/finlog/internal/response"
)

type RecordService interface {
	List(ctx context.Context, ownerID string, filters dto.ListFilters) (dto.ListRecordsResponse, error)
	Create(ctx context.Context, ownerID string, rec models.Record) (int64, error)
	Update(ctx context.Context, ownerID, id string, rec models.Record) (int64, error)
	Delete(ctx context.Context, ownerID, id string) (int64, error)
	DeleteAll(ctx context.Context, ownerID string) (int64, error)
	CreateBatch(ctx context.Context, ownerID string, records []models.Record) (int64, int, error)
	ReplaceAll(ctx context.Context, ownerID string, records []models.Record) (int64, int, error)
}

// RateLimitGate wraps mutating routes; applied before any record work.
type RateLimitGate func(http.Handler) http.Handler

type recordHandlers struct {
	ResponseHandler response.ResponseHandler
	RecordSvc       RecordService
	RateLimit       RateLimitGate
	BatchCap        int
}

func NewRecordHandlers(deps *Deps) *recordHandlers {
	return &recordHandlers{
		ResponseHandler: deps.ResponseHandler,
		RecordSvc:       deps.RecordSvc,
		RateLimit:       deps.RateLimit,
		BatchCap:        deps.BatchCap,
	}
}

func (h *recordHandlers) RecordRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListRecords)

	// Only mutating entries pass through the rate-limit gate.
	r.Group(func(r chi.Router) {
		if h.RateLimit != nil {
			r.Use(h.RateLimit)
		}
		r.Post("/", h.CreateRecord)
		r.Post("/batch", h.CreateBatch)
		r.Put("/replace", h.ReplaceAll) // must be before /{recordId}
		r.Put("/{recordId}", h.UpdateRecord)
		r.Delete("/{recordId}", h.DeleteRecord)
		r.Delete("/", h.DeleteAll)
	})
	return r
}

func (h *recordHandlers) ListRecords(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())
	filters := dto.ListFilters{
		Account:  r.URL.Query().Get("account"),
		DateFrom: r.URL.Query().Get("dateFrom"),
		DateTo:   r.URL.Query().Get("dateTo"),
	}

	resp, err := h.RecordSvc.List(r.Context(), owner, filters)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, resp)
}

func (h *recordHandlers) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec models.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewInvalidJSONError())
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := rec.Validate(); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	owner := middleware.Owner(r.Context())
	version, err := h.RecordSvc.Create(r.Context(), owner, rec)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, dto.MutationResponse{OK: true, Version: version})
}

func (h *recordHandlers) CreateBatch(w http.ResponseWriter, r *http.Request) {
	records, err := h.decodeBatch(r, false)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	owner := middleware.Owner(r.Context())
	version, count, err := h.RecordSvc.CreateBatch(r.Context(), owner, records)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, dto.BatchResponse{OK: true, Count: count, Version: version})
}

func (h *recordHandlers) ReplaceAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.decodeBatch(r, true)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	owner := middleware.Owner(r.Context())
	version, count, err := h.RecordSvc.ReplaceAll(r.Context(), owner, records)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, dto.BatchResponse{OK: true, Count: count, Version: version})
}

func (h *recordHandlers) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordId")
	var rec models.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewInvalidJSONError())
		return
	}
	rec.ID = recordID
	if err := rec.Validate(); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	owner := middleware.Owner(r.Context())
	version, err := h.RecordSvc.Update(r.Context(), owner, recordID, rec)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, dto.MutationResponse{OK: true, Version: version})
}

func (h *recordHandlers) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordId")
	owner := middleware.Owner(r.Context())

	version, err := h.RecordSvc.Delete(r.Context(), owner, recordID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, dto.MutationResponse{OK: true, Version: version})
}

func (h *recordHandlers) DeleteAll(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	version, err := h.RecordSvc.DeleteAll(r.Context(), owner)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, dto.MutationResponse{OK: true, Version: version})
}

// decodeBatch parses, caps, validates, and assigns ids to a record list body.
// allowEmpty distinguishes replace (an empty list clears the set) from batch
// create (at least one record).
func (h *recordHandlers) decodeBatch(r *http.Request, allowEmpty bool) ([]models.Record, error) {
	var records []models.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		return nil, errs.NewInvalidJSONError()
	}
	if len(records) == 0 && !allowEmpty {
		return nil, errs.NewValidationError("batch must contain at least one record")
	}
	if h.BatchCap > 0 && len(records) > h.BatchCap {
		return nil, errs.NewValidationError(fmt.Sprintf("batch exceeds cap of %d records", h.BatchCap))
	}

	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if err := records[i].Validate(); err != nil {
			return nil, err
		}
	}
	return records, nil
}
