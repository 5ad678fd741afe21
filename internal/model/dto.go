package model

// AcquireRequest triggers one acquisition run for a client. The API key is an
// opaque credential forwarded to the remote report service.
type AcquireRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
}

type AcquireResponse struct {
	ClientID   string `json:"client_id"`
	StatusCode int    `json:"status_code"`
	BodyBytes  int    `json:"body_bytes"`
	DocumentID int64  `json:"document_id"`
}

// IngestionSummary is the outcome of one ingestion run. Per-document failure
// detail lives in the ingestion log, not here.
type IngestionSummary struct {
	DocumentsProcessed int   `json:"documents_processed"`
	DocumentsFailed    int   `json:"documents_failed"`
	RowsInserted       int64 `json:"rows_inserted"`
}
