package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/finlog-app/finlog/internal/handlers"
	"github.com/finlog-app/finlog/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(lm.LoggerMiddleware)

	r.Get("/healthz", handlers.Healthz)

	rh := handlers.NewRecordHandlers(deps)
	r.Group(func(r chi.Router) {
		// The per-address gate runs before token verification so brute-force
		// traffic is throttled without costing a signature check each time.
		if deps.IPRateLimit != nil {
			r.Use(deps.IPRateLimit)
		}
		r.Use(deps.Auth.BearerAuth)
		r.Mount("/records", rh.RecordRoutes())
	})
	return r
}
