package report

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/internal/logger"
	"email-report-pipeline/internal/model"
	"email-report-pipeline/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportClient is the network surface the state machine drives.
type ReportClient interface {
	RequestGeneration(ctx context.Context, apiKey string) (string, error)
	Download(ctx context.Context, link, apiKey string) (*model.ReportArtifact, error)
}

// StatusLog records state transitions durably. Writes happen inline with the
// state machine so an observer can reconstruct progress after a crash.
type StatusLog interface {
	UpsertReportEvent(ctx context.Context, clientID, status string, link *string) error
}

// Acquirer runs the two-level retry protocol: outer process attempts request
// a fresh link, inner download attempts poll an existing one. A link whose
// download budget is spent is abandoned, never retried.
type Acquirer struct {
	cfg       config.AcquisitionConfig
	client    ReportClient
	statusLog StatusLog
	log       zerolog.Logger
}

func NewAcquirer(cfg config.AcquisitionConfig, client ReportClient, statusLog StatusLog) *Acquirer {
	return &Acquirer{
		cfg:       cfg,
		client:    client,
		statusLog: statusLog,
		log:       logger.Get(),
	}
}

// Acquire requests, polls and downloads one report. The single success exit
// is an HTTP 200 download; every other outcome ends in a
// *errors.ProcessExhaustedError after the full attempt budget is spent.
func (a *Acquirer) Acquire(ctx context.Context, clientID, apiKey string) (*model.ReportArtifact, error) {
	runID := uuid.NewString()
	log := a.log.With().Str("client_id", clientID).Str("run_id", runID).Logger()

	log.Info().Msg("Starting report acquisition")
	a.emit(ctx, log, clientID, string(model.ReportStatusRequested), nil)

	var history []string
	var lastErr error

	for attempt := 1; attempt <= a.cfg.MaxProcessAttempts; attempt++ {
		log.Info().Int("process_attempt", attempt).Msg("Requesting report generation")

		link, err := a.client.RequestGeneration(ctx, apiKey)
		if err != nil {
			lastErr = err
			history = append(history, fmt.Sprintf("generation attempt %d: %s", attempt, err.Error()))
			log.Warn().Err(err).Int("process_attempt", attempt).Msg("Report generation failed")
			a.emit(ctx, log, clientID, string(model.ReportStatusGenerationFailed)+": "+err.Error(), nil)

			if attempt < a.cfg.MaxProcessAttempts {
				if serr := a.sleep(ctx, a.cfg.GenerationBackoff*time.Duration(attempt)); serr != nil {
					return nil, serr
				}
				continue
			}

			a.emit(ctx, log, clientID, string(model.ReportStatusProcessExhausted), nil)
			return nil, &errors.ProcessExhaustedError{
				ClientID:    clientID,
				Attempts:    attempt,
				Diagnostics: history,
				Err:         lastErr,
			}
		}

		log.Info().Str("report_link", link).Msg("Report link generated")
		a.emit(ctx, log, clientID, string(model.ReportStatusLinkGenerated), &link)

		// Diagnostics are scoped to this link's attempt window.
		diags := make([]string, 0, a.cfg.MaxDownloadAttempts)

		for dl := 1; dl <= a.cfg.MaxDownloadAttempts; dl++ {
			if serr := a.sleep(ctx, a.cfg.PreDownloadDelay); serr != nil {
				return nil, serr
			}

			artifact, err := a.client.Download(ctx, link, apiKey)
			if err == nil && artifact.StatusCode == http.StatusOK {
				log.Info().Int("download_attempt", dl).Int("body_bytes", len(artifact.Body)).Msg("Report downloaded")
				a.emit(ctx, log, clientID, string(model.ReportStatusDownloaded), &link)
				return artifact, nil
			}

			var msg string
			if err != nil {
				lastErr = err
				msg = fmt.Sprintf("download attempt %d: %s", dl, err.Error())
			} else {
				lastErr = errors.DownloadNotReadyError{StatusCode: artifact.StatusCode}
				msg = fmt.Sprintf("download attempt %d: HTTP %d", dl, artifact.StatusCode)
			}
			diags = append(diags, msg)
			log.Warn().Int("download_attempt", dl).Str("detail", msg).Msg("Download attempt failed")
			a.emit(ctx, log, clientID, string(model.ReportStatusDownloading)+": "+msg, &link)

			if dl < a.cfg.MaxDownloadAttempts {
				if serr := a.sleep(ctx, a.cfg.DownloadRetryDelay); serr != nil {
					return nil, serr
				}
			}
		}

		joined := strings.Join(diags, "; ")
		log.Warn().Int("process_attempt", attempt).Msg("Download budget exhausted for link")
		a.emit(ctx, log, clientID, string(model.ReportStatusDownloadExhausted)+": "+joined, &link)
		history = append(history, diags...)

		if attempt < a.cfg.MaxProcessAttempts {
			if serr := a.sleep(ctx, a.cfg.DownloadExhaustedBackoff*time.Duration(attempt)); serr != nil {
				return nil, serr
			}
		}
	}

	a.emit(ctx, log, clientID, string(model.ReportStatusProcessExhausted), nil)
	return nil, &errors.ProcessExhaustedError{
		ClientID:    clientID,
		Attempts:    a.cfg.MaxProcessAttempts,
		Diagnostics: history,
		Err:         lastErr,
	}
}

// emit writes a status event. A failed write never masks the run's outcome;
// it is logged and dropped.
func (a *Acquirer) emit(ctx context.Context, log zerolog.Logger, clientID, status string, link *string) {
	if err := a.statusLog.UpsertReportEvent(ctx, clientID, status, link); err != nil {
		log.Error().Err(errors.LogWriteError{Err: err}).Str("status", status).Msg("Failed to record status event")
	}
}

func (a *Acquirer) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
