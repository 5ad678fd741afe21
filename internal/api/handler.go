package api

import (
	goerrors "errors"
	"net/http"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/internal/db"
	"email-report-pipeline/internal/ingest"
	"email-report-pipeline/internal/logger"
	"email-report-pipeline/internal/model"
	"email-report-pipeline/internal/report"
	"email-report-pipeline/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	reportService *report.Service
	ingestService *ingest.Service
	repo          db.Repository
	cfg           *config.Config
	log           zerolog.Logger
}

func NewHandler(
	reportService *report.Service,
	ingestService *ingest.Service,
	repo db.Repository,
	cfg *config.Config,
) *Handler {
	return &Handler{
		reportService: reportService,
		ingestService: ingestService,
		repo:          repo,
		cfg:           cfg,
		log:           logger.Get(),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.cfg.App.Version,
	})
}

// AcquireReport runs one acquisition synchronously. The two-level retry
// protocol sleeps for minutes on a slow remote side, so callers should set
// generous client timeouts.
func (h *Handler) AcquireReport(c *gin.Context) {
	var req model.AcquireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resp, err := h.reportService.AcquireAndStore(c.Request.Context(), req.ClientID, req.APIKey)
	if err != nil {
		var exhausted *errors.ProcessExhaustedError
		if goerrors.As(err, &exhausted) {
			h.log.Warn().Err(err).Str("client_id", req.ClientID).Msg("Report acquisition exhausted")
			c.JSON(http.StatusBadGateway, gin.H{
				"error":       "Report acquisition failed",
				"attempts":    exhausted.Attempts,
				"diagnostics": exhausted.Diagnostics,
			})
			return
		}
		h.log.Error().Err(err).Str("client_id", req.ClientID).Msg("Report acquisition error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetReportStatus(c *gin.Context) {
	clientID := c.Param("client_id")

	events, err := h.repo.ListReportEvents(c.Request.Context(), clientID)
	if err != nil {
		h.log.Error().Err(err).Str("client_id", clientID).Msg("Failed to list report events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client_id": clientID,
		"events":    events,
	})
}

// RunIngestion processes every pending raw document. Individual document
// failures are reflected in the summary and the ingestion log, not in the
// HTTP status.
func (h *Handler) RunIngestion(c *gin.Context) {
	summary, err := h.ingestService.IngestPendingDocuments(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Ingestion run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
