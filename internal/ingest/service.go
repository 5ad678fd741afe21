package ingest

import (
	"context"

	"email-report-pipeline/internal/db"
	"email-report-pipeline/internal/logger"
	"email-report-pipeline/internal/model"
	"email-report-pipeline/pkg/errors"

	"github.com/rs/zerolog"
)

// maxLogMessageLen bounds failure messages stored in the ingestion log.
const maxLogMessageLen = 250

// Service drives one ingestion run: list pending raw documents, decode, map,
// bulk insert, and track each document's lifecycle in the ingestion log.
// Documents are processed strictly one at a time; one document's failure
// never aborts the run.
type Service struct {
	repo   db.Repository
	loader *Loader
	log    zerolog.Logger
}

func NewService(repo db.Repository, loader *Loader) *Service {
	return &Service{
		repo:   repo,
		loader: loader,
		log:    logger.Get(),
	}
}

// IngestPendingDocuments processes every pending raw document and returns the
// run summary. Per-document failure detail lives in the ingestion log.
func (s *Service) IngestPendingDocuments(ctx context.Context) (*model.IngestionSummary, error) {
	docs, err := s.repo.ListPendingDocuments(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("pending", len(docs)).Msg("Starting ingestion run")

	summary := &model.IngestionSummary{}
	for _, doc := range docs {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		inserted, err := s.processDocument(ctx, doc)
		summary.DocumentsProcessed++
		if err != nil {
			summary.DocumentsFailed++
			continue
		}
		summary.RowsInserted += inserted
	}

	s.log.Info().
		Int("documents", summary.DocumentsProcessed).
		Int("failed", summary.DocumentsFailed).
		Int64("rows_inserted", summary.RowsInserted).
		Msg("Ingestion run completed")

	return summary, nil
}

func (s *Service) processDocument(ctx context.Context, doc model.RawDocument) (int64, error) {
	log := s.log.With().Int64("document_id", doc.ID).Str("client_id", doc.ClientID).Logger()
	log.Info().Msg("Processing raw document")

	logID, err := s.repo.OpenIngestionLog(ctx, doc.ClientID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open ingestion log")
		s.recordFailure(ctx, log, 0, doc, err)
		return 0, err
	}

	records, err := DecodeDocument([]byte(doc.RawText))
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode document")
		s.recordFailure(ctx, log, logID, doc, err)
		return 0, err
	}

	rows := make([]*model.ParsedRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, MapRow(record, doc.ClientID))
	}

	log.Debug().Int("rows", len(rows)).Msg("Document mapped, inserting batch")

	inserted, err := s.loader.InsertBatch(ctx, rows)
	if err != nil {
		loadErr := errors.LoadError{DocumentID: doc.ID, Err: err}
		log.Error().Err(loadErr).Msg("Failed to insert batch")
		s.recordFailure(ctx, log, logID, doc, loadErr)
		return 0, loadErr
	}

	rowCount := len(rows)
	if err := s.repo.CloseIngestionLog(ctx, logID, string(model.IngestionStatusProcessed), &rowCount); err != nil {
		log.Error().Err(errors.LogWriteError{Err: err}).Msg("Failed to close ingestion log")
	}
	s.markProcessed(ctx, log, doc.ID)

	log.Info().Int64("rows_inserted", inserted).Msg("Document processed")
	return inserted, nil
}

// recordFailure closes the document's log row with the (bounded) error text,
// falling back to a fresh row when none was opened. Failed documents are
// marked processed; reprocessing requires a manual flag reset.
func (s *Service) recordFailure(ctx context.Context, log zerolog.Logger, logID int64, doc model.RawDocument, cause error) {
	status := truncate(string(model.IngestionStatusFailed)+": "+cause.Error(), maxLogMessageLen)

	var err error
	if logID != 0 {
		err = s.repo.CloseIngestionLog(ctx, logID, status, nil)
	} else {
		err = s.repo.RecordIngestionFailure(ctx, doc.ClientID, status)
	}
	if err != nil {
		log.Error().Err(errors.LogWriteError{Err: err}).Msg("Failed to record ingestion failure")
	}

	s.markProcessed(ctx, log, doc.ID)
}

func (s *Service) markProcessed(ctx context.Context, log zerolog.Logger, documentID int64) {
	if err := s.repo.MarkDocumentProcessed(ctx, documentID); err != nil {
		log.Error().Err(err).Msg("Failed to mark document processed")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
