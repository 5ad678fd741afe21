package worker

import (
	"context"
	"time"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/internal/ingest"
	"email-report-pipeline/internal/logger"

	"github.com/rs/zerolog"
)

// IngestionWorker runs the ingestion service on an interval. Documents are
// processed sequentially within each run; there is no parallelism to manage.
type IngestionWorker struct {
	cfg     *config.Config
	service *ingest.Service
	log     zerolog.Logger
}

func NewIngestionWorker(cfg *config.Config, service *ingest.Service) *IngestionWorker {
	return &IngestionWorker{
		cfg:     cfg,
		service: service,
		log:     logger.Get(),
	}
}

func (w *IngestionWorker) Start(ctx context.Context) error {
	w.log.Info().Dur("interval", w.cfg.Workers.Ingestion.Interval).Msg("Starting ingestion worker")

	if w.cfg.Workers.Ingestion.RunOnStart {
		w.log.Info().Msg("Running initial ingestion on startup")
		w.run(ctx)
	}

	ticker := time.NewTicker(w.cfg.Workers.Ingestion.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Ingestion worker context cancelled")
			return ctx.Err()
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *IngestionWorker) Stop() {
	w.log.Info().Msg("Stopping ingestion worker")
}

func (w *IngestionWorker) run(ctx context.Context) {
	summary, err := w.service.IngestPendingDocuments(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Ingestion run failed")
		return
	}

	if summary.DocumentsProcessed > 0 {
		w.log.Info().
			Int("documents", summary.DocumentsProcessed).
			Int("failed", summary.DocumentsFailed).
			Int64("rows_inserted", summary.RowsInserted).
			Msg("Scheduled ingestion completed")
	}
}
