package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/citymetrics/cityrank/internal/model"
)

// createTestCampaignSummary creates a campaign summary with mixed outcomes.
func createTestCampaignSummary() *model.CampaignSummary {
	started := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	summary := &model.CampaignSummary{
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Minute),
	}
	summary.Add(model.UnitResult{
		Dataset: "cost_of_living", Year: "current",
		Outcome: model.OutcomeWritten, Rows: 540,
		Path: "data/cost_of_living_current.csv", Duration: 12 * time.Second,
	})
	summary.Add(model.UnitResult{
		Dataset: "crime", Year: "2011",
		Outcome: model.OutcomeEmpty, Duration: 4 * time.Second,
	})
	summary.Add(model.UnitResult{
		Dataset: "quality_of_life", Year: "2023",
		Outcome: model.OutcomeFailed, Err: "table header not present",
		Duration: 20 * time.Second,
	})
	return summary
}

// createTestUnifySummary creates a unify summary with one loaded table.
func createTestUnifySummary() *model.UnifySummary {
	return &model.UnifySummary{
		DBPath: "/tmp/cityrank.db",
		Tables: []model.TableResult{
			{
				Table:   "cost_of_living",
				Batches: 3,
				Rows:    1620,
				Columns: []string{"city", "country", "year", "cost_of_living_index"},
			},
		},
	}
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes campaign header and tallies", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.WriteCampaign(createTestCampaignSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "CITYRANK HARVEST SUMMARY") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "Written:   1") {
			t.Error("expected written tally")
		}
		if !strings.Contains(output, "Failed:    1") {
			t.Error("expected failed tally")
		}
	})

	t.Run("writes per-unit outcomes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.WriteCampaign(createTestCampaignSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[+] cost_of_living current (540 rows)") {
			t.Errorf("expected written unit line, got:\n%s", output)
		}
		if !strings.Contains(output, "[o] crime 2011 (no data)") {
			t.Errorf("expected empty unit line, got:\n%s", output)
		}
		if !strings.Contains(output, "[!] quality_of_life 2023 - table header not present") {
			t.Errorf("expected failed unit line, got:\n%s", output)
		}
	})

	t.Run("verbose mode includes batch paths", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.WriteCampaign(createTestCampaignSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "data/cost_of_living_current.csv") {
			t.Error("expected verbose output to contain batch path")
		}
	})

	t.Run("writes unify summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.WriteUnify(createTestUnifySummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "CITYRANK UNIFY SUMMARY") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "/tmp/cityrank.db") {
			t.Error("expected output to contain database path")
		}
		if !strings.Contains(output, "Rows:   1620") {
			t.Error("expected output to contain total rows")
		}
	})
}

// TestMarkdownWriter tests the markdown summary writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes campaign report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteCampaign(createTestCampaignSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# CityRank Harvest Report") {
			t.Error("expected markdown H1 header")
		}
		if !strings.Contains(output, "cost_of_living") {
			t.Errorf("expected unit table row, got:\n%s", output)
		}
		if !strings.Contains(output, "table header not present") {
			t.Error("expected failed unit detail in table")
		}
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid outcome chart")
		}
	})

	t.Run("warns when units failed", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteCampaign(createTestCampaignSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!WARNING]") {
			t.Error("expected warning alert for failed units")
		}
	})

	t.Run("cautions when nothing written", func(t *testing.T) {
		t.Parallel()

		summary := &model.CampaignSummary{}
		summary.Add(model.UnitResult{
			Dataset: "crime", Year: "2023",
			Outcome: model.OutcomeFailed, Err: "navigation failed",
		})

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteCampaign(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!CAUTION]") {
			t.Error("expected caution alert when no batches were written")
		}
	})

	t.Run("writes unify report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteUnify(createTestUnifySummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# CityRank Unify Report") {
			t.Error("expected markdown H1 header")
		}
		if !strings.Contains(output, "cost_of_living") {
			t.Errorf("expected table row, got:\n%s", output)
		}
		if !strings.Contains(output, "1620") {
			t.Error("expected row count in table")
		}
	})
}

// failingWriter always returns an error, for MultiWriter error handling.
type failingWriter struct{}

func (failingWriter) WriteCampaign(*model.CampaignSummary) (int, error) {
	return 0, errors.New("write failed")
}

func (failingWriter) WriteUnify(*model.UnifySummary) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests fan-out to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var first, second bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&first), NewMarkdownWriter(&second))

		if _, err := mw.WriteCampaign(createTestCampaignSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if first.Len() == 0 {
			t.Error("expected simple output to be written")
		}
		if second.Len() == 0 {
			t.Error("expected markdown output to be written")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf))

		if _, err := mw.WriteCampaign(createTestCampaignSummary()); err == nil {
			t.Fatal("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected no output after failing writer")
		}
	})
}

// TestTruncateString tests the cell truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := truncateString("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := truncateString("a very long value indeed", 10); got != "a very ..." {
		t.Errorf("expected truncated string, got %q", got)
	}
}
