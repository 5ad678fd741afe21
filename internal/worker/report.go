package worker

import (
	"context"
	"time"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/internal/logger"
	"email-report-pipeline/internal/report"

	"github.com/rs/zerolog"
)

// ReportWorker acquires reports for every configured client on an interval.
// Each client runs as an independent flow on the pool.
type ReportWorker struct {
	cfg     *config.Config
	service *report.Service
	pool    *Pool
	log     zerolog.Logger
}

func NewReportWorker(cfg *config.Config, service *report.Service) *ReportWorker {
	return &ReportWorker{
		cfg:     cfg,
		service: service,
		pool:    NewPool(cfg.Workers.Report.Count),
		log:     logger.Get(),
	}
}

func (w *ReportWorker) Start(ctx context.Context) error {
	w.log.Info().
		Int("clients", len(w.cfg.Workers.Report.Clients)).
		Dur("interval", w.cfg.Workers.Report.Interval).
		Msg("Starting report worker")

	w.pool.Start(ctx)

	if w.cfg.Workers.Report.RunOnStart {
		w.log.Info().Msg("Running initial acquisition on startup")
		w.acquireAll(ctx)
	}

	ticker := time.NewTicker(w.cfg.Workers.Report.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Report worker context cancelled")
			return ctx.Err()
		case <-ticker.C:
			w.log.Info().Msg("Starting scheduled acquisition")
			w.acquireAll(ctx)
		}
	}
}

func (w *ReportWorker) Stop() {
	w.log.Info().Msg("Stopping report worker")
	w.pool.Stop()
}

func (w *ReportWorker) acquireAll(ctx context.Context) {
	for _, client := range w.cfg.Workers.Report.Clients {
		client := client
		err := w.pool.Submit(ctx, func(ctx context.Context) error {
			resp, err := w.service.AcquireAndStore(ctx, client.ClientID, client.APIKey)
			if err != nil {
				w.log.Error().Err(err).Str("client_id", client.ClientID).Msg("Acquisition run failed")
				return err
			}
			w.log.Info().
				Str("client_id", client.ClientID).
				Int64("document_id", resp.DocumentID).
				Int("body_bytes", resp.BodyBytes).
				Msg("Acquisition run completed")
			return nil
		})
		if err != nil {
			w.log.Warn().Err(err).Str("client_id", client.ClientID).Msg("Acquisition run not scheduled")
			return
		}
	}
}
