package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/citymetrics/cityrank/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteCampaign outputs the campaign summary in Markdown format.
func (w *MarkdownWriter) WriteCampaign(summary *model.CampaignSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("CityRank Harvest Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Finished", summary.FinishedAt.Format("2006-01-02 15:04:05 MST")},
			{"Attempted", strconv.Itoa(summary.Attempted())},
			{"Written", strconv.Itoa(summary.Written())},
			{"Empty", strconv.Itoa(summary.Empty())},
			{"Failed", strconv.Itoa(summary.Failed())},
			{"Total Rows", strconv.Itoa(summary.TotalRows())},
		},
	})
	md.PlainText("")

	if summary.Attempted() > 0 {
		w.writeOutcomeChart(md, summary)
	}
	w.writeCampaignAlert(md, summary)

	md.H2("Units")
	md.PlainText("")
	w.writeUnitsTable(md, summary.Units)

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeOutcomeChart writes a mermaid pie chart of unit outcomes.
func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, summary *model.CampaignSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Harvest Unit Outcomes"),
		piechart.WithShowData(true),
	)

	if summary.Written() > 0 {
		chart.LabelAndIntValue("Written", uint64(summary.Written()))
	}
	if summary.Empty() > 0 {
		chart.LabelAndIntValue("Empty", uint64(summary.Empty()))
	}
	if summary.Failed() > 0 {
		chart.LabelAndIntValue("Failed", uint64(summary.Failed()))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeCampaignAlert writes an alert reflecting the campaign health.
func (w *MarkdownWriter) writeCampaignAlert(md *markdown.Markdown, summary *model.CampaignSummary) {
	switch {
	case summary.Written() == 0:
		md.Caution("No batch files were written. Check the base URL, selectors, and network access.")
	case summary.Failed() > 0:
		md.Warningf(
			"%d unit(s) failed during the harvest. Their batch files are missing from this run.",
			summary.Failed(),
		)
	case summary.Empty() > 0:
		md.Note(fmt.Sprintf("%d unit(s) returned no data and were skipped.", summary.Empty()))
	default:
		md.Tip("All harvest units completed with data.")
	}
	md.PlainText("")
}

// writeUnitsTable writes the per-unit result table.
func (w *MarkdownWriter) writeUnitsTable(md *markdown.Markdown, units []model.UnitResult) {
	rows := make([][]string, len(units))
	for i, unit := range units {
		detail := "-"
		switch unit.Outcome {
		case model.OutcomeWritten:
			detail = unit.Path
		case model.OutcomeFailed:
			detail = truncateString(unit.Err, 60)
		}

		rows[i] = []string{
			unit.Dataset,
			unit.Year,
			unit.Outcome.String(),
			strconv.Itoa(unit.Rows),
			unit.Duration.Round(time.Millisecond).String(),
			detail,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Dataset", "Year", "Outcome", "Rows", "Duration", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteUnify outputs the unify summary in Markdown format.
func (w *MarkdownWriter) WriteUnify(summary *model.UnifySummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("CityRank Unify Report")
	md.PlainText("")
	md.PlainText("Database: `" + summary.DBPath + "`")
	md.PlainText("")

	rows := make([][]string, len(summary.Tables))
	for i, table := range summary.Tables {
		rows[i] = []string{
			table.Table,
			strconv.Itoa(table.Batches),
			strconv.FormatInt(table.Rows, 10),
			truncateString(strings.Join(table.Columns, ", "), 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Table", "Batches", "Rows", "Columns"},
		Rows:   rows,
	})
	md.PlainText("")

	md.PlainTextf("Total rows loaded: **%d**", summary.TotalRows())
	md.PlainText("")

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [cityrank](https://github.com/citymetrics/cityrank)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
