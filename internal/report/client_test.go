package report

import (
	"context"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"email-report-pipeline/internal/config"
	"email-report-pipeline/pkg/errors"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.ReportAPIConfig{
		BaseURL:    baseURL,
		ReportType: "1",
	})
}

func TestRequestGeneration(t *testing.T) {
	var gotKey, gotReportType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotReportType = r.URL.Query().Get("reportType")
		w.Header().Set("Location", "https://reports.example.com/download/abc")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	link, err := client.RequestGeneration(context.Background(), "secret")
	if err != nil {
		t.Fatalf("RequestGeneration: %v", err)
	}
	if link != "https://reports.example.com/download/abc" {
		t.Errorf("link = %q", link)
	}
	if gotKey != "secret" {
		t.Errorf("x-api-key = %q, want secret", gotKey)
	}
	if gotReportType != "1" {
		t.Errorf("reportType = %q, want 1", gotReportType)
	}
}

func TestRequestGenerationMissingLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.RequestGeneration(context.Background(), "secret")
	if !goerrors.Is(err, errors.ErrMissingLocation) {
		t.Fatalf("error = %v, want ErrMissingLocation", err)
	}
}

func TestRequestGenerationDoesNotFollowRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reports/generate-email-report" {
			t.Errorf("redirect was followed to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Location", "/download/xyz")
		w.WriteHeader(http.StatusFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	link, err := client.RequestGeneration(context.Background(), "secret")
	if err != nil {
		t.Fatalf("RequestGeneration: %v", err)
	}
	if link != "/download/xyz" {
		t.Errorf("link = %q", link)
	}
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("a,b\n1,2\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	artifact, err := client.Download(context.Background(), server.URL+"/download/abc", "secret")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if artifact.StatusCode != http.StatusOK {
		t.Errorf("status = %d", artifact.StatusCode)
	}
	if artifact.Body != "a,b\n1,2\n" {
		t.Errorf("body = %q", artifact.Body)
	}
	if ct := artifact.Headers["Content-Type"]; len(ct) == 0 || ct[0] != "text/csv" {
		t.Errorf("headers = %v", artifact.Headers)
	}
}

func TestDownloadNotReadyIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	artifact, err := client.Download(context.Background(), server.URL, "secret")
	if err != nil {
		t.Fatalf("Download returned error for non-2xx: %v", err)
	}
	if artifact.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 passed through", artifact.StatusCode)
	}
}

func TestDownloadTransportError(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	_, err := client.Download(context.Background(), "http://127.0.0.1:0/nowhere", "secret")

	var transport errors.TransportError
	if !goerrors.As(err, &transport) {
		t.Fatalf("error = %v, want TransportError", err)
	}
}
