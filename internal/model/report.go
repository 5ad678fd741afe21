package model

import "time"

// ReportStatus labels a state transition of one acquisition run. The status
// log stores free text so per-attempt diagnostics ride along with these
// values.
type ReportStatus string

const (
	ReportStatusRequested         ReportStatus = "REQUESTED"
	ReportStatusLinkGenerated     ReportStatus = "LINK_GENERATED"
	ReportStatusDownloading       ReportStatus = "DOWNLOADING"
	ReportStatusDownloaded        ReportStatus = "DOWNLOADED"
	ReportStatusGenerationFailed  ReportStatus = "GENERATION_FAILED"
	ReportStatusDownloadExhausted ReportStatus = "DOWNLOAD_EXHAUSTED"
	ReportStatusProcessExhausted  ReportStatus = "PROCESS_EXHAUSTED"
)

// ReportEvent is the current-status row for a (client, link) pair. Events for
// a link overwrite each other; events before a link exists overwrite each
// other under the client id alone. The log is not an audit trail.
type ReportEvent struct {
	ID         int64     `json:"id" db:"id"`
	ClientID   string    `json:"client_id" db:"client_id"`
	Status     string    `json:"status" db:"status"`
	ReportLink *string   `json:"report_link,omitempty" db:"report_link"`
	EventTime  time.Time `json:"event_time" db:"event_time"`
}

// ReportArtifact is the raw result of a successful download.
type ReportArtifact struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       string              `json:"body"`
}
