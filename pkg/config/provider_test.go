package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}

	if cfg.Trend.Frac != 0.25 {
		t.Errorf("expected default frac 0.25, got %v", cfg.Trend.Frac)
	}
	if cfg.Chart.XRange[0] != 0 || cfg.Chart.XRange[1] != 30 {
		t.Errorf("expected default x range [0 30], got %v", cfg.Chart.XRange)
	}
	if cfg.Chart.YRange[0] != -500 || cfg.Chart.YRange[1] != 4700 {
		t.Errorf("expected default y range [-500 4700], got %v", cfg.Chart.YRange)
	}
	if len(cfg.Chart.Materials) != 7 {
		t.Errorf("expected 7 palette entries, got %d", len(cfg.Chart.Materials))
	}
}

func TestYAMLProviderOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9090
source:
  type: sqlite
  path: /var/lib/oysterdash/densities.db
  cache_ttl: 5m
trend:
  iterations: 0
`)

	cfg, err := NewYAMLProvider(path, false).LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ListenAddr != "0.0.0.0" {
		t.Errorf("expected default listen addr to survive, got %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Source.Type != SourceSQLite || cfg.Source.Path != "/var/lib/oysterdash/densities.db" {
		t.Errorf("unexpected source: %+v", cfg.Source)
	}
	if cfg.Source.CacheTTL != 5*time.Minute {
		t.Errorf("expected cache_ttl 5m, got %v", cfg.Source.CacheTTL)
	}
	if cfg.Trend.Iterations != 0 {
		t.Errorf("expected iterations override to 0, got %d", cfg.Trend.Iterations)
	}
	if cfg.Trend.Frac != 0.25 {
		t.Errorf("expected default frac to survive, got %v", cfg.Trend.Frac)
	}
}

func TestYAMLProviderRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "trend:\n  bandwidth: 0.3\n")

	if _, err := NewYAMLProvider(path, false).LoadConfig(); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := NewYAMLProvider(path, false).LoadConfig(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	cfg, err := NewYAMLProvider(path, true).LoadConfig()
	if err != nil {
		t.Fatalf("expected defaults when missing file is allowed, got %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.HTTP.Port)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OYSTERDASH_HTTP_PORT", "7070")
	t.Setenv("OYSTERDASH_SOURCE_PATH", "/tmp/densities.csv")
	t.Setenv("OYSTERDASH_TREND_FRAC", "0.4")
	t.Setenv("OYSTERDASH_LOG_DEBUG", "true")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTP.Port != 7070 {
		t.Errorf("expected port 7070, got %d", cfg.HTTP.Port)
	}
	if cfg.Source.Path != "/tmp/densities.csv" {
		t.Errorf("expected source path override, got %q", cfg.Source.Path)
	}
	if cfg.Trend.Frac != 0.4 {
		t.Errorf("expected frac 0.4, got %v", cfg.Trend.Frac)
	}
	if !cfg.Log.Debug {
		t.Error("expected debug logging enabled")
	}
	if cfg.Source.Type != SourceCSV {
		t.Errorf("unset variables should keep defaults, got source type %q", cfg.Source.Type)
	}
}

func TestApplyEnvBadValue(t *testing.T) {
	t.Setenv("OYSTERDASH_HTTP_PORT", "eighty")

	if err := ApplyEnv(DefaultConfig()); err == nil {
		t.Fatal("expected an error for a non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConfigData)
		errText string
	}{
		{
			name:    "port out of range",
			mutate:  func(c *ConfigData) { c.HTTP.Port = 70000 },
			errText: "http.port",
		},
		{
			name:    "cert without key",
			mutate:  func(c *ConfigData) { c.HTTP.TLSCertPath = "/etc/cert.pem" },
			errText: "tls_key_path",
		},
		{
			name:    "unknown source",
			mutate:  func(c *ConfigData) { c.Source.Type = "parquet" },
			errText: "unsupported source.type",
		},
		{
			name:    "timescaledb without connection string",
			mutate:  func(c *ConfigData) { c.Source.Type = SourceTimescaleDB },
			errText: "connection_string",
		},
		{
			name:    "csv without path",
			mutate:  func(c *ConfigData) { c.Source.Path = "" },
			errText: "source.path",
		},
		{
			name:    "frac too large",
			mutate:  func(c *ConfigData) { c.Trend.Frac = 1.2 },
			errText: "trend.frac",
		},
		{
			name:    "negative iterations",
			mutate:  func(c *ConfigData) { c.Trend.Iterations = -2 },
			errText: "trend.iterations",
		},
		{
			name:    "inverted y range",
			mutate:  func(c *ConfigData) { c.Chart.YRange = []float64{4700, -500} },
			errText: "chart.y_range",
		},
		{
			name:    "short x range",
			mutate:  func(c *ConfigData) { c.Chart.XRange = []float64{30} },
			errText: "chart.x_range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("expected error containing %q, got %q", tt.errText, err.Error())
			}
		})
	}
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := NewYAMLProvider(filepath.Join("..", "..", "config.yaml.example"), false).LoadConfig()
	if err != nil {
		t.Fatalf("example config should load, got %v", err)
	}

	def := DefaultConfig()
	if cfg.HTTP != def.HTTP || cfg.Source != def.Source || cfg.Trend != def.Trend || cfg.Log != def.Log {
		t.Errorf("example config drifted from defaults:\n%+v\n%+v", cfg, def)
	}
	if len(cfg.Chart.Materials) != len(def.Chart.Materials) {
		t.Fatalf("expected %d materials, got %d", len(def.Chart.Materials), len(cfg.Chart.Materials))
	}
	for i := range def.Chart.Materials {
		if cfg.Chart.Materials[i] != def.Chart.Materials[i] {
			t.Errorf("material %d: expected %+v, got %+v", i, def.Chart.Materials[i], cfg.Chart.Materials[i])
		}
	}
}
