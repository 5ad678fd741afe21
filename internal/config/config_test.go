package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalConfig = `
app:
  name: email-report-pipeline
  version: test
database:
  host: localhost
  port: 5432
  user: u
  password: p
  name: reports
report_api:
  base_url: https://api.reply.io/api/v2
logging:
  level: debug
`

func loadFromString(t *testing.T, yaml string) *Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestLoadAppliesAcquisitionDefaults(t *testing.T) {
	cfg := loadFromString(t, minimalConfig)

	a := cfg.Acquisition
	if a.MaxProcessAttempts != 2 {
		t.Errorf("MaxProcessAttempts = %d, want 2", a.MaxProcessAttempts)
	}
	if a.MaxDownloadAttempts != 3 {
		t.Errorf("MaxDownloadAttempts = %d, want 3", a.MaxDownloadAttempts)
	}
	if a.PreDownloadDelay != 30*time.Second {
		t.Errorf("PreDownloadDelay = %v, want 30s", a.PreDownloadDelay)
	}
	if a.DownloadRetryDelay != 60*time.Second {
		t.Errorf("DownloadRetryDelay = %v, want 60s", a.DownloadRetryDelay)
	}
	if a.GenerationBackoff != 60*time.Second {
		t.Errorf("GenerationBackoff = %v, want 60s", a.GenerationBackoff)
	}
	if a.DownloadExhaustedBackoff != 120*time.Second {
		t.Errorf("DownloadExhaustedBackoff = %v, want 120s", a.DownloadExhaustedBackoff)
	}
	if cfg.ReportAPI.ReportType != "1" {
		t.Errorf("ReportType = %q, want 1", cfg.ReportAPI.ReportType)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg := loadFromString(t, minimalConfig+`
acquisition:
  max_process_attempts: 5
  pre_download_delay: 1s
`)

	if cfg.Acquisition.MaxProcessAttempts != 5 {
		t.Errorf("MaxProcessAttempts = %d, want 5", cfg.Acquisition.MaxProcessAttempts)
	}
	if cfg.Acquisition.PreDownloadDelay != time.Second {
		t.Errorf("PreDownloadDelay = %v, want 1s", cfg.Acquisition.PreDownloadDelay)
	}
	// Untouched fields still get defaults
	if cfg.Acquisition.MaxDownloadAttempts != 3 {
		t.Errorf("MaxDownloadAttempts = %d, want 3", cfg.Acquisition.MaxDownloadAttempts)
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := loadFromString(t, minimalConfig)

	want := "postgres://u:p@localhost:5432/reports?sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
