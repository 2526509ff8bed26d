package handlers

import (
	"log/slog"

	"github.com/finlog-app/finlog/internal/middleware"
	"github.com/finlog-app/finlog/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	RecordSvc       RecordService
	Auth            *middleware.Middleware
	RateLimit       RateLimitGate
	IPRateLimit     RateLimitGate
	BatchCap        int
}
