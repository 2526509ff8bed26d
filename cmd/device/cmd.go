package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/finlog-app/finlog/internal/client/api"
	"github.com/finlog-app/finlog/internal/client/cache"
	"github.com/finlog-app/finlog/internal/client/syncer"
	"github.com/finlog-app/finlog/internal/clientconfig"
	"github.com/finlog-app/finlog/internal/dto"
	"github.com/finlog-app/finlog/internal/models"
	"github.com/finlog-app/finlog/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	configPath := flag.String("config", "finlog.yaml", "device config file")
	importPath := flag.String("import", "", "JSON file of records to import after reconciling")
	flag.Parse()

	cfg, err := clientconfig.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, logger.NewServerlessHandler)
	ctx := logger.ToContext(context.Background(), log)

	local, err := cache.Open(cfg.CachePath)
	exitOnError("cache open failed", err, log)
	defer local.Close()

	client := api.New(cfg.ServerURL, cfg.Token)
	s := syncer.New(client, local)

	if err := s.Reconcile(ctx); err != nil {
		// Local data stays usable; the sync state carries the failure.
		log.Warn("reconciliation failed, continuing on local cache", "error", err)
	}

	if *importPath != "" {
		report, err := importRecords(ctx, s, *importPath)
		exitOnError("import failed", err, log)
		log.Info("import finished",
			"received", report.Received,
			"valid", report.Valid,
			"invalid", report.Invalid,
			"duplicates", report.Duplicates,
			"added", report.Added,
		)
	}

	log.Info("device state",
		"sync_state", string(local.State()),
		"records", local.Len(),
		"last_synced_version", local.LastSyncedVersion(),
	)
}

// importRecords deduplicates a JSON batch into the cache and mirrors the
// accepted records to the server.
func importRecords(ctx context.Context, s *syncer.Syncer, path string) (dto.ImportReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.ImportReport{}, err
	}
	var candidates []models.Record
	if err := json.Unmarshal(data, &candidates); err != nil {
		return dto.ImportReport{}, err
	}

	res, err := s.ImportBatch(ctx, candidates, time.Now())
	if err != nil {
		return dto.ImportReport{}, err
	}
	return dto.ImportReport{
		Received:   res.Received,
		Valid:      res.Valid,
		Invalid:    res.Invalid,
		Duplicates: res.Duplicates,
		Added:      res.Added,
	}, nil
}
