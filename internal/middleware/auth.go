package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/finlog-app/finlog/internal/auth"
	"github.com/finlog-app/finlog/internal/errs"
	"github.com/finlog-app/finlog/internal/response"
)

type Middleware struct {
	Verifier  auth.TokenVerifier
	Responses response.ResponseHandler
}

func NewMiddleware(verifier auth.TokenVerifier, responses response.ResponseHandler) *Middleware {
	return &Middleware{Verifier: verifier, Responses: responses}
}

// context key
type contextKey string

const ownerKey contextKey = "owner"

// BearerAuth rejects requests without a valid bearer token before any
// repository work and stores the owner id in the request context.
func (m *Middleware) BearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if header == "" {
			m.Responses.HandleError(w, r, errs.NewUnauthorizedError("missing Authorization header"))
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.Responses.HandleError(w, r, errs.NewUnauthorizedError("invalid Authorization header"))
			return
		}

		identity, err := m.Verifier.Verify(r.Context(), parts[1])
		if err != nil {
			m.Responses.HandleError(w, r, errs.NewUnauthorizedError("invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), identity.OwnerID)))
	})
}

// WithOwner returns a context carrying the owner id.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

// Owner extracts the authenticated owner id.
func Owner(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}
