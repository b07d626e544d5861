package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/citymetrics/cityrank/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-unit detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-unit details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteCampaign outputs the campaign summary in human-readable format.
func (w *SimpleWriter) WriteCampaign(summary *model.CampaignSummary) (int, error) {
	var sb strings.Builder

	w.writeRule(&sb, "=")
	sb.WriteString("                      CITYRANK HARVEST SUMMARY\n")
	w.writeRule(&sb, "=")
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Started:   %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Finished:  %s\n", summary.FinishedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second)))
	sb.WriteString("\n")

	w.writeRule(&sb, "-")
	sb.WriteString("UNITS\n")
	w.writeRule(&sb, "-")
	sb.WriteString("\n")

	for _, unit := range summary.Units {
		w.writeUnit(&sb, unit)
	}
	sb.WriteString("\n")

	w.writeRule(&sb, "-")
	sb.WriteString(fmt.Sprintf("  Attempted: %d\n", summary.Attempted()))
	sb.WriteString(fmt.Sprintf("  Written:   %d\n", summary.Written()))
	sb.WriteString(fmt.Sprintf("  Empty:     %d\n", summary.Empty()))
	sb.WriteString(fmt.Sprintf("  Failed:    %d\n", summary.Failed()))
	sb.WriteString(fmt.Sprintf("  Rows:      %d\n", summary.TotalRows()))
	w.writeRule(&sb, "=")

	return w.output.Write([]byte(sb.String()))
}

// writeUnit writes one harvest unit line with its outcome indicator.
func (w *SimpleWriter) writeUnit(sb *strings.Builder, unit model.UnitResult) {
	indicator := w.outcomeIndicator(unit.Outcome)
	sb.WriteString(fmt.Sprintf("  [%s] %s %s", indicator, unit.Dataset, unit.Year))

	switch unit.Outcome {
	case model.OutcomeWritten:
		sb.WriteString(fmt.Sprintf(" (%d rows)", unit.Rows))
	case model.OutcomeFailed:
		sb.WriteString(fmt.Sprintf(" - %s", unit.Err))
	case model.OutcomeEmpty:
		sb.WriteString(" (no data)")
	}
	sb.WriteString("\n")

	if w.verbose && unit.Path != "" {
		sb.WriteString(fmt.Sprintf("      %s (%s)\n", unit.Path, unit.Duration.Round(time.Millisecond)))
	}
}

// outcomeIndicator returns a visual indicator for the unit outcome.
func (w *SimpleWriter) outcomeIndicator(outcome model.UnitOutcome) string {
	switch outcome {
	case model.OutcomeWritten:
		return "+"
	case model.OutcomeEmpty:
		return "o"
	case model.OutcomeFailed:
		return "!"
	default:
		return "?"
	}
}

// WriteUnify outputs the unify summary in human-readable format.
func (w *SimpleWriter) WriteUnify(summary *model.UnifySummary) (int, error) {
	var sb strings.Builder

	w.writeRule(&sb, "=")
	sb.WriteString("                       CITYRANK UNIFY SUMMARY\n")
	w.writeRule(&sb, "=")
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Database: %s\n\n", summary.DBPath))

	for _, table := range summary.Tables {
		sb.WriteString(fmt.Sprintf("  %-24s %d rows from %d batch file(s), %d columns\n",
			table.Table, table.Rows, table.Batches, len(table.Columns)))
		if w.verbose {
			sb.WriteString(fmt.Sprintf("      columns: %s\n", strings.Join(table.Columns, ", ")))
		}
	}
	sb.WriteString("\n")

	w.writeRule(&sb, "-")
	sb.WriteString(fmt.Sprintf("  Tables: %d\n", len(summary.Tables)))
	sb.WriteString(fmt.Sprintf("  Rows:   %d\n", summary.TotalRows()))
	w.writeRule(&sb, "=")

	return w.output.Write([]byte(sb.String()))
}

// writeRule writes a 70-column separator line.
func (w *SimpleWriter) writeRule(sb *strings.Builder, char string) {
	sb.WriteString(strings.Repeat(char, 70))
	sb.WriteString("\n")
}
