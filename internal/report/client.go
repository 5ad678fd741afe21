package report

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/internal/logger"
	"email-report-pipeline/internal/model"
	"email-report-pipeline/pkg/errors"

	"github.com/rs/zerolog"
)

const generatePath = "/reports/generate-email-report"

// Client issues the two report API round-trips. It carries no retry logic;
// the acquisition state machine owns all retry and backoff policy.
type Client struct {
	cfg        config.ReportAPIConfig
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg config.ReportAPIConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			// The generation endpoint signals success through a Location
			// header; a redirect status must reach the caller, not be
			// followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: logger.Get(),
	}
}

// RequestGeneration asks the remote side to build a fresh report. Success is
// signaled only by the Location header; the HTTP status is irrelevant.
func (c *Client) RequestGeneration(ctx context.Context, apiKey string) (string, error) {
	reqURL := c.cfg.BaseURL + generatePath + "?" + url.Values{"reportType": {c.cfg.ReportType}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", errors.TransportError{Op: "generate", Err: err}
	}
	req.Header.Set("x-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.TransportError{Op: "generate", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.log.Debug().Int("status", resp.StatusCode).Msg("Generation response received")

	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.ErrMissingLocation
	}

	return location, nil
}

// Download fetches an already-generated link. A non-2xx status is not an
// error here; the caller interprets the status code.
func (c *Client) Download(ctx context.Context, link, apiKey string) (*model.ReportArtifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, errors.TransportError{Op: "download", Err: err}
	}
	req.Header.Set("x-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.TransportError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.TransportError{Op: "download", Err: err}
	}

	c.log.Debug().Int("status", resp.StatusCode).Int("body_bytes", len(body)).Msg("Download response received")

	return &model.ReportArtifact{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       string(body),
	}, nil
}
