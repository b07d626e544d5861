package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestTruncateHandler tests attribute value truncation.
func TestTruncateHandler(t *testing.T) {
	t.Parallel()

	t.Run("short values pass through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelInfo)
		logger.Info("unit done", "dataset", "crime", "rows", 42)

		out := buf.String()
		if !strings.Contains(out, "dataset=crime") {
			t.Errorf("expected dataset attr in output, got %q", out)
		}
		if strings.Contains(out, truncationMarker) {
			t.Errorf("short values should not be truncated: %q", out)
		}
	})

	t.Run("long values are truncated", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		handler := NewTruncateHandler(
			slog.NewTextHandler(&buf, nil),
			WithMaxValueLen(16),
		)
		logger := slog.New(handler)

		snapshot := strings.Repeat("<tr><td>x</td></tr>", 100)
		logger.Info("page snapshot", "html", snapshot)

		out := buf.String()
		if !strings.Contains(out, truncationMarker) {
			t.Errorf("expected truncation marker in output, got %q", out)
		}
		if strings.Contains(out, snapshot) {
			t.Error("full snapshot should not appear in output")
		}
	})

	t.Run("truncation does not split runes", func(t *testing.T) {
		t.Parallel()

		// Two-byte runes; cutting at 5 bytes lands mid-rune.
		got := truncate("ééééé", 5)
		if got != "éé" {
			t.Errorf("expected %q, got %q", "éé", got)
		}
	})

	t.Run("group attributes are handled recursively", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		handler := NewTruncateHandler(
			slog.NewTextHandler(&buf, nil),
			WithMaxValueLen(8),
		)
		logger := slog.New(handler)
		logger.Info("unit",
			slog.Group("page", slog.String("body", strings.Repeat("a", 64))),
		)

		if !strings.Contains(buf.String(), truncationMarker) {
			t.Errorf("expected grouped value to be truncated, got %q", buf.String())
		}
	})
}
