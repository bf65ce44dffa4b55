// Command cleanup removes cached words older than the configured retention
// period. It is intended to be invoked by an external cron job, not as an
// in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/owl-backend/internal/adapter/postgres"
	"github.com/heartmarshall/owl-backend/internal/app"
	"github.com/heartmarshall/owl-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Database.ApplicationName == postgres.DefaultApplicationName {
		cfg.Database.ApplicationName = "owl-cleanup"
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	threshold := time.Now().Add(-cfg.Dictionary.Retention())

	deleted, err := a.WordCache.Purge(ctx, threshold)
	if err != nil {
		logger.Error("purge failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		a.Close()
		os.Exit(1)
	}

	logger.Info("purge completed",
		slog.Int64("deleted", deleted),
		slog.Time("threshold", threshold),
	)
}
