package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndValidate_Minimal(t *testing.T) {
	path := writeConfig(t, `
api:
  token: "secret-token"
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.Poller.Interval != DefaultPollInterval {
		t.Errorf("Interval = %s, want %s", cfg.Poller.Interval, DefaultPollInterval)
	}
	if len(cfg.Trackers) != 1 || cfg.Trackers[0].Kind != "market-cap" {
		t.Errorf("Trackers = %+v, want implicit market-cap tracker", cfg.Trackers)
	}
	if cfg.Store.Path != DefaultStorePath {
		t.Errorf("Store.Path = %q, want default", cfg.Store.Path)
	}
}

func TestLoadAndValidate_Full(t *testing.T) {
	path := writeConfig(t, `
api:
  token: "secret"
  timeout: 5s
store:
  path: /var/lib/tracker/history.jsonl
poller:
  interval: 30s
  timeout: 10s
trackers:
  - kind: item
    name: god-swords
    pages: 2
  - kind: price
    name: whales
    pages: 5
  - kind: market-cap
    name: market
server:
  addr: ":9000"
  live_feed: true
metrics:
  enabled: true
archive:
  enabled: true
  dsn: "postgres://tracker:pw@localhost:5432/market"
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.Poller.Interval != 30*time.Second {
		t.Errorf("Interval = %s, want 30s", cfg.Poller.Interval)
	}
	if len(cfg.Trackers) != 3 {
		t.Fatalf("Trackers = %d, want 3", len(cfg.Trackers))
	}
	if cfg.Trackers[2].Pages != DefaultTrackerPages {
		t.Errorf("unspecified pages = %d, want default %d", cfg.Trackers[2].Pages, DefaultTrackerPages)
	}
	if !cfg.Archive.Enabled || cfg.Archive.BatchSize != DefaultArchiveBatch {
		t.Errorf("archive = %+v, want enabled with default batch", cfg.Archive)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("DONUT_TOKEN", "from-env")

	path := writeConfig(t, `
api:
  token: "${DONUT_TOKEN}"
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.API.Token != "from-env" {
		t.Errorf("Token = %q, want from-env", cfg.API.Token)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing token", `
store:
  path: x.jsonl
`},
		{"bad tracker kind", `
api:
  token: t
trackers:
  - kind: volume
    pages: 1
`},
		{"timeout exceeds interval", `
api:
  token: t
poller:
  interval: 10s
  timeout: 30s
`},
		{"archive without dsn", `
api:
  token: t
archive:
  enabled: true
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			if _, err := LoadAndValidate(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
