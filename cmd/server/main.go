// Package main is the entry point for the course enrollment server.
//
// main stays minimal. It reads configuration, builds the logger and the
// store, and hands them to internal/server. All actual logic lives in the
// internal packages.
//
// cmd/ holds one directory per executable: cmd/server (this one) and
// cmd/seed (loads the course catalog).
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/enrollment/internal/config"
	"github.com/sakif/enrollment/internal/server"
)

func main() {
	// Configuration comes first: it decides the log level.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	store, err := server.OpenStore(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store",
			slog.String("driver", cfg.Database.Driver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger, store)
	if err != nil {
		store.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM and closes the store on the way out.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
