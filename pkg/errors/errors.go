package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingLocation = errors.New("generation response carried no location header")
	ErrNoSheets        = errors.New("workbook has no sheets")
)

// DownloadNotReadyError reports a non-200 download response. The remote side
// does not distinguish "still generating" from "failed", so neither do we.
type DownloadNotReadyError struct {
	StatusCode int
}

func (e DownloadNotReadyError) Error() string {
	return fmt.Sprintf("report not ready: HTTP %d", e.StatusCode)
}

// TransportError wraps a network-level failure from either report endpoint.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %s", e.Op, e.Err.Error())
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// ProcessExhaustedError is the only error the acquisition state machine lets
// escape: every process attempt either failed to generate a link or spent its
// full download budget. Diagnostics holds the per-attempt failure messages in
// order.
type ProcessExhaustedError struct {
	ClientID    string
	Attempts    int
	Diagnostics []string
	Err         error
}

func (e *ProcessExhaustedError) Error() string {
	msg := fmt.Sprintf("report acquisition exhausted after %d process attempts for client %s", e.Attempts, e.ClientID)
	if len(e.Diagnostics) > 0 {
		msg += ": " + strings.Join(e.Diagnostics, "; ")
	}
	return msg
}

func (e *ProcessExhaustedError) Unwrap() error {
	return e.Err
}

// LoadError marks the bulk insert failing for a single raw document.
type LoadError struct {
	DocumentID int64
	Err        error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("bulk load failed for document %d: %s", e.DocumentID, e.Err.Error())
}

func (e LoadError) Unwrap() error {
	return e.Err
}

// LogWriteError wraps a status-log write failure. Callers log it and keep the
// original operational outcome; it never replaces the underlying error.
type LogWriteError struct {
	Err error
}

func (e LogWriteError) Error() string {
	return fmt.Sprintf("status log write failed: %s", e.Err.Error())
}

func (e LogWriteError) Unwrap() error {
	return e.Err
}
