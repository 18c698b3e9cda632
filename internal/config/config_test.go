package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_OverridesAndRailDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://catalog.local/api/v1
  timeout: 3s
images:
  probe_timeout: 750ms
rails:
  - id: best
    title: Best
    quota: 4
  - id: horror
    genre: Horror
    quota: 2
    batch: 5
custom_rail:
  genre: Western
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.BaseURL != "http://catalog.local/api/v1" {
		t.Fatalf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("timeout = %v", cfg.API.Timeout)
	}
	if cfg.Images.ProbeTimeout != 750*time.Millisecond {
		t.Fatalf("probe_timeout = %v", cfg.Images.ProbeTimeout)
	}
	// untouched keys keep their defaults
	if cfg.Images.Concurrency != 8 {
		t.Fatalf("concurrency = %d, want default 8", cfg.Images.Concurrency)
	}

	if len(cfg.Rails) != 2 {
		t.Fatalf("rails = %d, want 2", len(cfg.Rails))
	}
	best := cfg.Rails[0]
	if best.SortBy != "-imdb_score" || best.Batch != 4 {
		t.Fatalf("best rail defaults not applied: %+v", best)
	}
	horror := cfg.Rails[1]
	if horror.Title != "Horror" || horror.Batch != 5 {
		t.Fatalf("horror rail = %+v", horror)
	}

	if cfg.CustomRail.Genre != "Western" || cfg.CustomRail.ID != "custom" || cfg.CustomRail.Quota != 6 {
		t.Fatalf("custom rail = %+v", cfg.CustomRail)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: DEBUG\n")
	t.Setenv("MARQUEE_API_BASE_URL", "http://env.example/api/v1/")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://env.example/api/v1/" {
		t.Fatalf("env override ignored: %q", cfg.API.BaseURL)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty base url", func(c *Config) { c.API.BaseURL = " " }, "base_url"},
		{"duplicate id", func(c *Config) { c.CustomRail.ID = c.Rails[0].ID }, "duplicate rail id"},
		{"zero quota", func(c *Config) { c.Rails[1].Quota = 0 }, "quota"},
		{"zero concurrency", func(c *Config) { c.Images.Concurrency = 0 }, "concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveConfigAs_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://saved.example/api/v1/"
	cfg.Rails = cfg.Rails[:1]
	cfg.Rails[0].Quota = 9

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := SaveConfigAs(cfg, path); err != nil {
		t.Fatalf("SaveConfigAs: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.API.BaseURL != cfg.API.BaseURL {
		t.Fatalf("base_url = %q", got.API.BaseURL)
	}
	if len(got.Rails) != 1 || got.Rails[0].Quota != 9 {
		t.Fatalf("rails = %+v", got.Rails)
	}
	if got.Images.ProbeTimeout != cfg.Images.ProbeTimeout {
		t.Fatalf("probe_timeout = %v", got.Images.ProbeTimeout)
	}
}

func TestEndpointURLs(t *testing.T) {
	api := APIConfig{BaseURL: "http://h:8000/api/v1", TitlesPath: "/titles/", GenresPath: "genres/"}
	if got := api.TitlesURL(); got != "http://h:8000/api/v1/titles/" {
		t.Fatalf("TitlesURL = %q", got)
	}
	if got := api.GenresURL(); got != "http://h:8000/api/v1/genres/" {
		t.Fatalf("GenresURL = %q", got)
	}
	api.GenresPath = "https://other/genres/"
	if got := api.GenresURL(); got != "https://other/genres/" {
		t.Fatalf("absolute GenresURL = %q", got)
	}
}

func TestClearCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	if err := os.MkdirAll(cfg.Cache.Dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Cache.Dir, "x.db"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := ClearCache(cfg); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	if _, err := os.Stat(cfg.Cache.Dir); !os.IsNotExist(err) {
		t.Fatalf("cache dir still present: %v", err)
	}
	if err := ClearCache(cfg); err != nil {
		t.Fatalf("second ClearCache: %v", err)
	}
}

func TestLoad_RailsDoNotInheritDefaults(t *testing.T) {
	path := writeConfig(t, `
rails:
  - id: a
    quota: 3
  - id: newest
    sort_by: -year
    quota: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Rails) != 2 {
		t.Fatalf("rails = %d, want 2", len(cfg.Rails))
	}
	for _, r := range cfg.Rails {
		if r.Genre != "" || r.Batch != 3 {
			t.Fatalf("rail %q picked up defaults: %+v", r.ID, r)
		}
	}
	if cfg.Rails[1].SortBy != "-year" {
		t.Fatalf("newest sort_by = %q", cfg.Rails[1].SortBy)
	}
}
