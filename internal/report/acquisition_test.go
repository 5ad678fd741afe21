package report

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"
	"testing"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/internal/model"
	"email-report-pipeline/pkg/errors"
)

// Zero delays keep the protocol deterministic and instant under test.
var testAcquisitionConfig = config.AcquisitionConfig{
	MaxProcessAttempts:  2,
	MaxDownloadAttempts: 3,
}

type fakeReportClient struct {
	genCalls int
	genErr   error

	downloadCalls int
	statuses      []int   // per-call status; past the end defaults to 404
	errs          []error // per-call transport error, nil = none
	body          string
}

func (f *fakeReportClient) RequestGeneration(ctx context.Context, apiKey string) (string, error) {
	f.genCalls++
	if f.genErr != nil {
		return "", f.genErr
	}
	return fmt.Sprintf("https://reports.example.com/download/%d", f.genCalls), nil
}

func (f *fakeReportClient) Download(ctx context.Context, link, apiKey string) (*model.ReportArtifact, error) {
	f.downloadCalls++
	i := f.downloadCalls - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	status := 404
	if i < len(f.statuses) {
		status = f.statuses[i]
	}
	return &model.ReportArtifact{StatusCode: status, Body: f.body}, nil
}

type loggedEvent struct {
	clientID string
	status   string
	link     *string
}

type fakeStatusLog struct {
	events []loggedEvent
	err    error
}

func (f *fakeStatusLog) UpsertReportEvent(ctx context.Context, clientID, status string, link *string) error {
	var linkCopy *string
	if link != nil {
		v := *link
		linkCopy = &v
	}
	f.events = append(f.events, loggedEvent{clientID: clientID, status: status, link: linkCopy})
	return f.err
}

func (f *fakeStatusLog) byPrefix(prefix string) []loggedEvent {
	var out []loggedEvent
	for _, ev := range f.events {
		if strings.HasPrefix(ev.status, prefix) {
			out = append(out, ev)
		}
	}
	return out
}

func TestAcquireGenerationNeverSucceeds(t *testing.T) {
	client := &fakeReportClient{genErr: errors.ErrMissingLocation}
	statusLog := &fakeStatusLog{}
	acquirer := NewAcquirer(testAcquisitionConfig, client, statusLog)

	_, err := acquirer.Acquire(context.Background(), "acme", "key")
	if err == nil {
		t.Fatal("expected error")
	}

	var exhausted *errors.ProcessExhaustedError
	if !goerrors.As(err, &exhausted) {
		t.Fatalf("error type = %T, want *ProcessExhaustedError", err)
	}
	if exhausted.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", exhausted.Attempts)
	}

	if client.genCalls != 2 {
		t.Errorf("generation calls = %d, want exactly maxProcessAttempts", client.genCalls)
	}
	if client.downloadCalls != 0 {
		t.Errorf("download calls = %d, want 0 when no link was ever generated", client.downloadCalls)
	}

	last := statusLog.events[len(statusLog.events)-1]
	if last.status != string(model.ReportStatusProcessExhausted) {
		t.Errorf("terminal event status = %q", last.status)
	}
	if last.link != nil {
		t.Errorf("terminal event carries link %q, want none", *last.link)
	}
}

func TestAcquireDownloadNeverReady(t *testing.T) {
	client := &fakeReportClient{}
	statusLog := &fakeStatusLog{}
	acquirer := NewAcquirer(testAcquisitionConfig, client, statusLog)

	_, err := acquirer.Acquire(context.Background(), "acme", "key")

	var exhausted *errors.ProcessExhaustedError
	if !goerrors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *ProcessExhaustedError", err)
	}

	if client.genCalls != 2 {
		t.Errorf("generation calls = %d, want 2", client.genCalls)
	}
	if client.downloadCalls != 6 {
		t.Errorf("download calls = %d, want maxProcessAttempts*maxDownloadAttempts", client.downloadCalls)
	}
	if len(exhausted.Diagnostics) != 6 {
		t.Errorf("diagnostics = %d entries, want 6", len(exhausted.Diagnostics))
	}

	terminalPerLink := statusLog.byPrefix(string(model.ReportStatusDownloadExhausted))
	if len(terminalPerLink) != 2 {
		t.Fatalf("download-exhausted events = %d, want one per link", len(terminalPerLink))
	}
	for _, ev := range terminalPerLink {
		if ev.link == nil {
			t.Error("download-exhausted event missing link key")
		}
		if !strings.Contains(ev.status, "; ") {
			t.Errorf("event %q should join diagnostics with semicolons", ev.status)
		}
	}
	if terminalPerLink[0].link != nil && terminalPerLink[1].link != nil &&
		*terminalPerLink[0].link == *terminalPerLink[1].link {
		t.Error("both process attempts used the same link; a fresh link is expected")
	}
}

func TestAcquireSucceedsMidBudget(t *testing.T) {
	client := &fakeReportClient{statuses: []int{404, 200}, body: "a,b\n1,2\n"}
	statusLog := &fakeStatusLog{}
	acquirer := NewAcquirer(testAcquisitionConfig, client, statusLog)

	artifact, err := acquirer.Acquire(context.Background(), "acme", "key")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if artifact.Body != "a,b\n1,2\n" {
		t.Errorf("body = %q", artifact.Body)
	}
	if client.genCalls != 1 {
		t.Errorf("generation calls = %d, want 1", client.genCalls)
	}
	if client.downloadCalls != 2 {
		t.Errorf("download calls = %d, want 2 (success stops the machine)", client.downloadCalls)
	}

	last := statusLog.events[len(statusLog.events)-1]
	if last.status != string(model.ReportStatusDownloaded) {
		t.Errorf("final event status = %q", last.status)
	}
	if last.link == nil {
		t.Error("downloaded event missing link key")
	}
}

func TestAcquireTransportErrorCountsAsAttempt(t *testing.T) {
	client := &fakeReportClient{
		errs:     []error{errors.TransportError{Op: "download", Err: fmt.Errorf("connection reset")}},
		statuses: []int{0, 200},
		body:     "payload",
	}
	statusLog := &fakeStatusLog{}
	acquirer := NewAcquirer(testAcquisitionConfig, client, statusLog)

	artifact, err := acquirer.Acquire(context.Background(), "acme", "key")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if artifact.Body != "payload" {
		t.Errorf("body = %q", artifact.Body)
	}
	if client.downloadCalls != 2 {
		t.Errorf("download calls = %d, want 2", client.downloadCalls)
	}

	attempts := statusLog.byPrefix(string(model.ReportStatusDownloading))
	if len(attempts) != 1 {
		t.Fatalf("per-attempt events = %d, want 1", len(attempts))
	}
	if !strings.Contains(attempts[0].status, "connection reset") {
		t.Errorf("attempt event %q missing transport detail", attempts[0].status)
	}
}

func TestAcquireStatusLogFailureDoesNotMaskResult(t *testing.T) {
	client := &fakeReportClient{statuses: []int{200}, body: "payload"}
	statusLog := &fakeStatusLog{err: fmt.Errorf("log table unavailable")}
	acquirer := NewAcquirer(testAcquisitionConfig, client, statusLog)

	artifact, err := acquirer.Acquire(context.Background(), "acme", "key")
	if err != nil {
		t.Fatalf("Acquire: %v, log failures must not mask the result", err)
	}
	if artifact.Body != "payload" {
		t.Errorf("body = %q", artifact.Body)
	}
}

func TestAcquireEmitsRequestedOnce(t *testing.T) {
	client := &fakeReportClient{}
	statusLog := &fakeStatusLog{}
	acquirer := NewAcquirer(testAcquisitionConfig, client, statusLog)

	acquirer.Acquire(context.Background(), "acme", "key")

	requested := statusLog.byPrefix(string(model.ReportStatusRequested))
	if len(requested) != 1 {
		t.Errorf("requested events = %d, want 1 for the whole run", len(requested))
	}
	if statusLog.events[0].status != string(model.ReportStatusRequested) {
		t.Errorf("first event = %q, want requested", statusLog.events[0].status)
	}
}
