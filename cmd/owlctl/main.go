// Command owlctl is an operator CLI for the Owl word cache. It wires the same
// services as the server and talks to storage directly.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/owl-backend/internal/adapter/postgres"
	"github.com/heartmarshall/owl-backend/internal/app"
	"github.com/heartmarshall/owl-backend/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(loadApp)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func loadApp(ctx context.Context) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Database.ApplicationName == postgres.DefaultApplicationName {
		cfg.Database.ApplicationName = "owlctl"
	}

	a, err := app.Build(ctx, cfg, app.NewLogger(cfg.Log))
	if err != nil {
		return nil, err
	}

	return &services{
		words:      a.WordCache,
		random:     a.Random,
		history:    a.History,
		favourites: a.Favourites,
		retention:  cfg.Dictionary.Retention(),
		close:      a.Close,
	}, nil
}
