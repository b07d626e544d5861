package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests default configuration values.
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultBaseURL, cfg.BaseURL)
	}
	if len(cfg.Datasets) != 4 {
		t.Errorf("expected 4 default datasets, got %d", len(cfg.Datasets))
	}
	if cfg.Datasets[0].ID != "cost_of_living" {
		t.Errorf("expected cost_of_living first, got %q", cfg.Datasets[0].ID)
	}
	if len(cfg.Years) != 4 || cfg.Years[0] != YearCurrent {
		t.Errorf("expected years starting with %q, got %v", YearCurrent, cfg.Years)
	}
	if !cfg.Headless {
		t.Error("expected headless browsing by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestNewConfigEnvOverrides tests environment variable overrides.
func TestNewConfigEnvOverrides(t *testing.T) {
	t.Setenv(EnvBaseURL, "https://rankings.example.com")
	t.Setenv(EnvDataDir, "/tmp/harvest")

	cfg := NewConfig()
	if cfg.BaseURL != "https://rankings.example.com" {
		t.Errorf("env base URL override not applied, got %q", cfg.BaseURL)
	}
	if cfg.DataDir != "/tmp/harvest" {
		t.Errorf("env data dir override not applied, got %q", cfg.DataDir)
	}
}

// TestConfigValidate tests validation sentinel errors.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty base URL",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantErr: ErrNoBaseURL,
		},
		{
			name:    "no datasets",
			mutate:  func(c *Config) { c.Datasets = nil },
			wantErr: ErrNoDatasets,
		},
		{
			name:    "dataset missing slug",
			mutate:  func(c *Config) { c.Datasets = []Dataset{{ID: "crime"}} },
			wantErr: ErrInvalidDataset,
		},
		{
			name:    "no years",
			mutate:  func(c *Config) { c.Years = nil },
			wantErr: ErrNoYears,
		},
		{
			name:    "zero header timeout",
			mutate:  func(c *Config) { c.HeaderTimeout = 0 },
			wantErr: ErrInvalidHeaderTimeout,
		},
		{
			name:    "negative settle",
			mutate:  func(c *Config) { c.RenderSettle = -time.Second },
			wantErr: ErrInvalidSettle,
		},
		{
			name:    "negative politeness delay",
			mutate:  func(c *Config) { c.PolitenessDelay = -time.Second },
			wantErr: ErrInvalidPolitenessDelay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests YAML loading and merge behavior.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("overrides apply only when set", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".cityrank")
		content := `
base_url: https://rankings.example.com
datasets:
  - id: crime
    slug: crime
years: ["2024"]
selectors:
  table: "table#rankings"
delays:
  header_timeout: 5s
  politeness: 100ms
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config file: %v", err)
		}

		cfg := NewConfig()
		cf.ApplyTo(cfg)

		if cfg.BaseURL != "https://rankings.example.com" {
			t.Errorf("base URL not overridden, got %q", cfg.BaseURL)
		}
		if len(cfg.Datasets) != 1 || cfg.Datasets[0].ID != "crime" {
			t.Errorf("datasets not overridden, got %v", cfg.Datasets)
		}
		if cfg.TableSelector != "table#rankings" {
			t.Errorf("table selector not overridden, got %q", cfg.TableSelector)
		}
		// Values absent from the file keep their defaults.
		if cfg.NextSelector != DefaultNextSelector {
			t.Errorf("next selector should keep default, got %q", cfg.NextSelector)
		}
		if cfg.HeaderTimeout != 5*time.Second {
			t.Errorf("header timeout not overridden, got %v", cfg.HeaderTimeout)
		}
		if cfg.PolitenessDelay != 100*time.Millisecond {
			t.Errorf("politeness delay not overridden, got %v", cfg.PolitenessDelay)
		}
		if cfg.RenderSettle != DefaultRenderSettle {
			t.Errorf("render settle should keep default, got %v", cfg.RenderSettle)
		}
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".cityrank")
		if err := os.WriteFile(path, []byte("datasets: [odd"), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

// TestFindConfigFile tests explicit path resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "cfg.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}
