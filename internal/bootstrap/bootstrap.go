package bootstrap

import (
	"log/slog"

	"github.com/finlog-app/finlog/internal/config"
	"github.com/finlog-app/finlog/internal/store"
	"github.com/finlog-app/finlog/pkg/logger"
)

type Bootstrap struct {
	Log   *slog.Logger
	Store *store.Store
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewServerlessHandler)

	bs.Store, err = store.Open(cfg.DBPath)
	if err != nil {
		return bs, err
	}

	// Explicit cold-start schema gate; idempotent on warm invocations.
	if err = bs.Store.EnsureSchema(); err != nil {
		return bs, err
	}

	return bs, nil
}

func (bs *Bootstrap) Close() {
	if bs.Store != nil {
		bs.Store.Close()
	}
}
