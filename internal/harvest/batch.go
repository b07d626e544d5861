package harvest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/citymetrics/cityrank/internal/model"
)

// BatchFileName returns the artifact name for a (dataset, year) unit.
// The naming convention carries provenance and is what the unifier globs
// for at import time.
func BatchFileName(dataset, year string) string {
	return fmt.Sprintf("%s_%s.csv", dataset, year)
}

// WriteBatch writes a batch as a UTF-8 CSV file (header row first) into
// dir and returns the final path.
//
// The file is written through a temp file and renamed into place so an
// interrupted unit never leaves a partial artifact behind: the unifier
// must only ever see complete batches.
func WriteBatch(dir string, batch *model.Batch) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	final := filepath.Join(dir, BatchFileName(batch.Dataset, batch.Year))

	tmp, err := os.CreateTemp(dir, BatchFileName(batch.Dataset, batch.Year)+".tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp batch file: %w", err)
	}
	tmpName := tmp.Name()
	// Best-effort cleanup of the temp file when any later step fails.
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(batch.Header); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write batch header: %w", err)
	}
	for _, row := range batch.Rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			return "", fmt.Errorf("failed to write batch row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to flush batch: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close batch file: %w", err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		return "", fmt.Errorf("failed to finalize batch file: %w", err)
	}
	return final, nil
}
