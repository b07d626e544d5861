package report

import (
	"io"

	"github.com/citymetrics/cityrank/internal/model"
)

// Writer defines the interface for summary output.
// Implementations write harvest and unify summaries in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// WriteCampaign outputs a harvest campaign summary.
	// Returns the number of bytes written and any error encountered.
	WriteCampaign(summary *model.CampaignSummary) (int, error)

	// WriteUnify outputs a unification summary.
	WriteUnify(summary *model.UnifySummary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write summaries, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteCampaign outputs the campaign summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteCampaign(summary *model.CampaignSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteCampaign(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteUnify outputs the unify summary to all configured Writers.
func (m *MultiWriter) WriteUnify(summary *model.UnifySummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteUnify(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
