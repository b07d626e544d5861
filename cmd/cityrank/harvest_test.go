package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/citymetrics/cityrank/internal/config"
)

// TestNewHarvestCmd tests the harvest command creation.
func TestNewHarvestCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHarvestCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "harvest" {
			t.Errorf("expected use 'harvest', got %q", cmd.Use)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"datasets", "years", "base-url", "data-dir", "headless",
			"header-timeout", "politeness", "config", "markdown", "output",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("headless defaults to true", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("headless")
		if flag == nil {
			t.Fatal("expected headless flag")
		}
		if flag.DefValue != "true" {
			t.Errorf("expected default 'true', got %q", flag.DefValue)
		}
	})
}

// TestBuildConfig tests config assembly from file and flags.
func TestBuildConfig(t *testing.T) {
	t.Run("defaults without file or flags", func(t *testing.T) {
		cmd := NewHarvestCmd()

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BaseURL != config.DefaultBaseURL {
			t.Errorf("expected default base URL, got %q", cfg.BaseURL)
		}
		if len(cfg.Datasets) != len(config.DefaultDatasets()) {
			t.Errorf("expected default datasets, got %d", len(cfg.Datasets))
		}
	})

	t.Run("flags override config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		content := "base_url: https://file.example.com\ndata_dir: file-data\n"
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewHarvestCmd()
		if err := cmd.Flags().Set("config", configPath); err != nil {
			t.Fatalf("failed to set config flag: %v", err)
		}
		if err := cmd.Flags().Set("data-dir", "flag-data"); err != nil {
			t.Fatalf("failed to set data-dir flag: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BaseURL != "https://file.example.com" {
			t.Errorf("expected base URL from file, got %q", cfg.BaseURL)
		}
		if cfg.DataDir != "flag-data" {
			t.Errorf("expected data dir from flag, got %q", cfg.DataDir)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		cmd := NewHarvestCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
			t.Fatalf("failed to set config flag: %v", err)
		}

		if _, err := buildConfig(cmd); err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
	})

	t.Run("duration flags apply", func(t *testing.T) {
		cmd := NewHarvestCmd()
		if err := cmd.Flags().Set("header-timeout", "5s"); err != nil {
			t.Fatalf("failed to set header-timeout flag: %v", err)
		}
		if err := cmd.Flags().Set("politeness", "250ms"); err != nil {
			t.Fatalf("failed to set politeness flag: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.HeaderTimeout != 5*time.Second {
			t.Errorf("expected 5s header timeout, got %s", cfg.HeaderTimeout)
		}
		if cfg.PolitenessDelay != 250*time.Millisecond {
			t.Errorf("expected 250ms politeness delay, got %s", cfg.PolitenessDelay)
		}
	})
}

// TestResolveDatasets tests dataset ID filtering.
func TestResolveDatasets(t *testing.T) {
	t.Parallel()

	configured := config.DefaultDatasets()

	t.Run("filters by ID preserving order", func(t *testing.T) {
		t.Parallel()

		got, err := resolveDatasets(configured, []string{"crime", "cost_of_living"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 datasets, got %d", len(got))
		}
		// Configured order wins over request order.
		if got[0].ID != "cost_of_living" || got[1].ID != "crime" {
			t.Errorf("expected configured order, got %q then %q", got[0].ID, got[1].ID)
		}
	})

	t.Run("unknown ID is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := resolveDatasets(configured, []string{"traffic"}); err == nil {
			t.Fatal("expected error for unknown dataset ID")
		}
	})
}
