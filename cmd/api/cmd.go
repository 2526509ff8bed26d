package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/finlog-app/finlog/internal/auth"
	"github.com/finlog-app/finlog/internal/bootstrap"
	"github.com/finlog-app/finlog/internal/config"
	"github.com/finlog-app/finlog/internal/handlers"
	"github.com/finlog-app/finlog/internal/middleware"
	"github.com/finlog-app/finlog/internal/response"
	"github.com/finlog-app/finlog/internal/router"
	"github.com/finlog-app/finlog/internal/services"
	"github.com/finlog-app/finlog/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	rstore := store.NewRecordStore(bs.Store)
	vstore := store.NewVersionStore(bs.Store)
	blstore := store.NewRateLimitStore(bs.Store)

	// services
	rserv := services.NewRecordService(rstore, vstore)
	limiter := services.NewRateLimiter(blstore)

	// response handler
	rh := response.New(bs.Log)

	// middleware
	verifier := auth.NewHMACVerifier(cfg.AuthSecret)
	authmw := middleware.NewMiddleware(verifier, rh)
	rlmw := middleware.NewRateLimitMiddleware(limiter, rh, cfg.RateLimit, cfg.RateWindow)
	ipmw := middleware.NewRateLimitMiddleware(limiter, rh, cfg.IPRateLimit, cfg.RateWindow)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.RecordSvc = rserv
	deps.Auth = authmw
	deps.RateLimit = rlmw.ByOwner("records")
	deps.IPRateLimit = ipmw.ByIP("auth")
	deps.BatchCap = cfg.BatchCap

	// router
	r := router.NewRouter(deps)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
