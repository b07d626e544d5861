package harvest

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/citymetrics/cityrank/internal/config"
	"github.com/citymetrics/cityrank/internal/model"
)

// TestCampaignRun tests the matrix loop, failure tolerance, and session
// release.
func TestCampaignRun(t *testing.T) {
	t.Parallel()

	t.Run("mixed outcomes continue the campaign", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.Years = []string{"2023", "2024", "2025"}

		session := &fakeSession{tables: map[string]string{
			// 2023 has data, 2024 renders an empty table, 2025 times out.
			"http://rankings.test/cost-of-living/rankings.jsp?title=2023": costOfLivingTable,
			"http://rankings.test/cost-of-living/rankings.jsp?title=2024": `<table id="t2"><thead><tr><th>Rank</th><th>City</th></tr></thead><tbody></tbody></table>`,
		}}

		campaign := NewCampaign(session, cfg)
		summary, err := campaign.Run(context.Background())
		if err != nil {
			t.Fatalf("campaign should tolerate partial failures, got %v", err)
		}

		if got := summary.Attempted(); got != 3 {
			t.Errorf("expected 3 attempted units, got %d", got)
		}
		if got := summary.Written(); got != 1 {
			t.Errorf("expected 1 written unit, got %d", got)
		}
		if got := summary.Empty(); got != 1 {
			t.Errorf("expected 1 empty unit, got %d", got)
		}
		if got := summary.Failed(); got != 1 {
			t.Errorf("expected 1 failed unit, got %d", got)
		}
		if session.closeCount == 0 {
			t.Error("session must be released when the campaign ends")
		}

		// Only the successful unit leaves an artifact.
		entries, err := os.ReadDir(cfg.DataDir)
		if err != nil {
			t.Fatalf("failed to list data dir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "cost_of_living_2023.csv" {
			t.Errorf("unexpected artifacts: %v", entries)
		}
	})

	t.Run("zero successes is a hard failure", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		session := &fakeSession{tables: map[string]string{}}

		campaign := NewCampaign(session, cfg)
		summary, err := campaign.Run(context.Background())
		if !errors.Is(err, ErrNoHarvestData) {
			t.Fatalf("expected ErrNoHarvestData, got %v", err)
		}
		if summary.Written() != 0 {
			t.Errorf("expected no written units, got %d", summary.Written())
		}
		if session.closeCount == 0 {
			t.Error("session must be released even on total failure")
		}
	})

	t.Run("cancellation aborts the run but releases the session", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		session := &fakeSession{tables: map[string]string{}}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		campaign := NewCampaign(session, cfg)
		_, err := campaign.Run(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if session.closeCount == 0 {
			t.Error("session must be released on cancellation")
		}
	})

	t.Run("units run in declared order", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.Datasets = []config.Dataset{
			{ID: "crime", Slug: "crime"},
			{ID: "quality_of_life", Slug: "quality-of-life"},
		}
		cfg.Years = []string{"current", "2023"}

		session := &fakeSession{tables: map[string]string{}}
		campaign := NewCampaign(session, cfg)
		summary, _ := campaign.Run(context.Background())

		wantOrder := []struct{ dataset, year string }{
			{"crime", "current"},
			{"crime", "2023"},
			{"quality_of_life", "current"},
			{"quality_of_life", "2023"},
		}
		if len(summary.Units) != len(wantOrder) {
			t.Fatalf("expected %d units, got %d", len(wantOrder), len(summary.Units))
		}
		for i, want := range wantOrder {
			got := summary.Units[i]
			if got.Dataset != want.dataset || got.Year != want.year {
				t.Errorf("unit %d = %s/%s, want %s/%s",
					i, got.Dataset, got.Year, want.dataset, want.year)
			}
		}
	})
}

// TestCampaignOutcomeTally verifies that empty units count as attempted
// but never as failed.
func TestCampaignOutcomeTally(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	session := &fakeSession{tables: map[string]string{
		"http://rankings.test/cost-of-living/rankings.jsp?title=2023": `<table id="t2"><thead><tr><th>Rank</th><th>City</th></tr></thead><tbody></tbody></table>`,
	}}

	campaign := NewCampaign(session, cfg)
	summary, err := campaign.Run(context.Background())
	if !errors.Is(err, ErrNoHarvestData) {
		t.Fatalf("expected ErrNoHarvestData for an all-empty campaign, got %v", err)
	}

	if summary.Attempted() != 1 {
		t.Errorf("empty unit must count as attempted, got %d", summary.Attempted())
	}
	if summary.Failed() != 0 {
		t.Errorf("empty unit must not count as failed, got %d", summary.Failed())
	}
	if summary.Units[0].Outcome != model.OutcomeEmpty {
		t.Errorf("expected OutcomeEmpty, got %v", summary.Units[0].Outcome)
	}
}
