package report

import (
	"context"
	"fmt"
	"strings"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/internal/db"
	"email-report-pipeline/internal/logger"
	"email-report-pipeline/internal/model"
	"email-report-pipeline/internal/storage"

	"github.com/rs/zerolog"
)

// Service runs the full acquisition path for one client: drive the state
// machine, stage the artifact body as a pending raw document, and archive a
// copy when an archive is configured.
type Service struct {
	acquirer *Acquirer
	repo     db.Repository
	archive  storage.ArtifactArchive
	log      zerolog.Logger
}

// NewService wires the acquisition stack. archive may be nil when archival is
// disabled.
func NewService(cfg *config.Config, repo db.Repository, archive storage.ArtifactArchive) *Service {
	client := NewClient(cfg.ReportAPI)
	return &Service{
		acquirer: NewAcquirer(cfg.Acquisition, client, repo),
		repo:     repo,
		archive:  archive,
		log:      logger.Get(),
	}
}

// AcquireAndStore acquires a report and captures its body in the raw-document
// staging area, where the next ingestion run picks it up.
func (s *Service) AcquireAndStore(ctx context.Context, clientID, apiKey string) (*model.AcquireResponse, error) {
	log := s.log.With().Str("client_id", clientID).Logger()

	artifact, err := s.acquirer.Acquire(ctx, clientID, apiKey)
	if err != nil {
		return nil, err
	}

	docID, err := s.repo.InsertRawDocument(ctx, clientID, artifact.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to stage raw document: %w", err)
	}
	log.Info().Int64("document_id", docID).Msg("Report artifact staged for ingestion")

	if s.archive != nil {
		key := fmt.Sprintf("reports/%s/%d.csv", clientID, docID)
		if err := s.archive.Store(ctx, key, strings.NewReader(artifact.Body)); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to archive report artifact")
		}
	}

	return &model.AcquireResponse{
		ClientID:   clientID,
		StatusCode: artifact.StatusCode,
		BodyBytes:  len(artifact.Body),
		DocumentID: docID,
	}, nil
}
