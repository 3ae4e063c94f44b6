package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cropwise-dev/cropwise/internal/config"
	"github.com/cropwise-dev/cropwise/internal/logger"
	"github.com/cropwise-dev/cropwise/internal/server"
	"github.com/cropwise-dev/cropwise/internal/workers"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	log.Info().Str("version", version).Msg("Starting Cropwise housekeeping worker")

	// Initialize database (reuse server's database initialization)
	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server (needed for DB)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := workers.StartCleanupScheduler(ctx, srv.GetDB(), cfg.Cleanup.Schedule, log); err != nil {
		log.Fatal().Err(err).Msg("Cleanup scheduler failed")
	}

	log.Info().Msg("Worker shutdown complete")
}
