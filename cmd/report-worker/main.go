package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/internal/db"
	"email-report-pipeline/internal/logger"
	"email-report-pipeline/internal/report"
	"email-report-pipeline/internal/storage"
	"email-report-pipeline/internal/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init("report-worker", cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting report worker")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database pool
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Initialize repository
	repo := db.NewRepository(pool)

	// Initialize artifact archive when enabled
	var archive storage.ArtifactArchive
	if cfg.Archive.Enabled {
		s3Archive, err := storage.NewS3Archive(cfg.Archive.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize artifact archive")
		}
		archive = s3Archive
	}

	// Create report worker
	reportWorker := worker.NewReportWorker(cfg, report.NewService(cfg, repo, archive))

	// Start worker
	go func() {
		if err := reportWorker.Start(ctx); err != nil && err != context.Canceled {
			log.Fatal().Err(err).Msg("Report worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down report worker...")

	// Cancel context to stop worker
	cancel()
	reportWorker.Stop()

	log.Info().Msg("Report worker exited")
}
