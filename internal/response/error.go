package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/finlog-app/finlog/internal/errs"
	"github.com/finlog-app/finlog/pkg/logger"
)

// Error codes carried in the uniform envelope.
const (
	CodeInvalidJSON     = "INVALID_JSON"
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternalError   = "INTERNAL_ERROR"
)

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error             ErrorBody `json:"error"`
	RetryAfterSeconds int       `json:"retryAfterSeconds,omitempty"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeEnvelope(w, r, status, ErrorEnvelope{
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			RequestID: chimiddleware.GetReqID(r.Context()),
		},
	})
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch e := err.(type) {
	case *errs.InvalidJSONError:
		log.Warn("malformed request body", "error", e.Message)
		h.WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, e.Message)

	case *errs.ValidationError:
		log.Warn("validation failed", "error", e.Message)
		h.WriteError(w, r, http.StatusUnprocessableEntity, CodeValidationError, e.Message)

	case *errs.UnauthorizedError:
		log.Warn("unauthorized request", "error", e.Message)
		h.WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, e.Message)

	case *errs.RateLimitedError:
		log.Warn("rate limited", "retry_after_seconds", e.RetryAfterSeconds)
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfterSeconds))
		h.writeEnvelope(w, r, http.StatusTooManyRequests, ErrorEnvelope{
			Error: ErrorBody{
				Code:      CodeRateLimited,
				Message:   e.Message,
				RequestID: chimiddleware.GetReqID(r.Context()),
			},
			RetryAfterSeconds: e.RetryAfterSeconds,
		})

	case *errs.DatabaseError:
		log.Error("database error",
			"operation", e.Operation,
			"error", e.Message)
		h.WriteError(w, r, http.StatusInternalServerError, CodeInternalError,
			"An error occurred")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, CodeInternalError,
			"An unexpected error occurred")
	}
}

func (h *responseHandler) writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env ErrorEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", env.Error.Code)
	}
}
