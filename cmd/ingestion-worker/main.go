package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/internal/db"
	"email-report-pipeline/internal/ingest"
	"email-report-pipeline/internal/logger"
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
	logger.Init("ingestion-worker", cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting ingestion worker")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database pool
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Initialize repository and ingestion service
	repo := db.NewRepository(pool)
	ingestService := ingest.NewService(repo, ingest.NewLoader(pool))

	// Create ingestion worker
	ingestionWorker := worker.NewIngestionWorker(cfg, ingestService)

	// Start worker
	go func() {
		if err := ingestionWorker.Start(ctx); err != nil && err != context.Canceled {
			log.Fatal().Err(err).Msg("Ingestion worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down ingestion worker...")

	// Cancel context to stop worker
	cancel()
	ingestionWorker.Stop()

	log.Info().Msg("Ingestion worker exited")
}
