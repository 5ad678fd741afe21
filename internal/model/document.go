package model

import "time"

// RawDocument is one unprocessed report payload in the staging area.
type RawDocument struct {
	ID       int64  `json:"id" db:"id"`
	RawText  string `json:"raw_text" db:"raw_text"`
	ClientID string `json:"client_id" db:"client_id"`
}

type IngestionStatus string

const (
	IngestionStatusStarted   IngestionStatus = "STARTED"
	IngestionStatusProcessed IngestionStatus = "PROCESSED"
	IngestionStatusFailed    IngestionStatus = "FAILED"
)

// IngestionLog tracks the processing lifecycle of one raw document. A row is
// opened when processing starts and updated in place on completion or
// failure.
type IngestionLog struct {
	ID        int64     `json:"id" db:"id"`
	ClientID  string    `json:"client_id" db:"client_id"`
	Status    string    `json:"status" db:"status"`
	RowCount  *int      `json:"row_count,omitempty" db:"row_count"`
	EventTime time.Time `json:"event_time" db:"event_time"`
}
