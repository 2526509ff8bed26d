package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/finlog-app/finlog/internal/errs"
	"github.com/finlog-app/finlog/internal/response"
)

type limiter interface {
	Check(ctx context.Context, bucket, identifier string, limit int64, window time.Duration) (bool, int, error)
}

type rateLimitMiddleware struct {
	Limiter   limiter
	Responses response.ResponseHandler
	Limit     int64
	Window    time.Duration
}

func NewRateLimitMiddleware(l limiter, responses response.ResponseHandler, limit int64, window time.Duration) *rateLimitMiddleware {
	return &rateLimitMiddleware{
		Limiter:   l,
		Responses: responses,
		Limit:     limit,
		Window:    window,
	}
}

// ByOwner gates mutating routes per authenticated owner, before any database
// work for the mutation itself happens. Must run after BearerAuth.
func (m *rateLimitMiddleware) ByOwner(bucket string) func(http.Handler) http.Handler {
	return m.keyed(bucket, func(r *http.Request) string {
		return Owner(r.Context())
	})
}

// ByIP gates unauthenticated routes per remote address (chi's RealIP
// middleware normalizes RemoteAddr first).
func (m *rateLimitMiddleware) ByIP(bucket string) func(http.Handler) http.Handler {
	return m.keyed(bucket, func(r *http.Request) string {
		return r.RemoteAddr
	})
}

func (m *rateLimitMiddleware) keyed(bucket string, identify func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := m.Limiter.Check(r.Context(), bucket, identify(r), m.Limit, m.Window)
			if err != nil {
				m.Responses.HandleError(w, r, err)
				return
			}
			if !allowed {
				m.Responses.HandleError(w, r, errs.NewRateLimitedError(retryAfter))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
