package storage

import (
	"path/filepath"
	"testing"
)

// TestOpen tests database creation and the read-only open path.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database and parent directory", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "nested", "cityrank.db")
		store, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer store.Close()

		if store.Path() != dbPath {
			t.Errorf("expected path %s, got %s", dbPath, store.Path())
		}
	})

	t.Run("missing database without create is an error", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "absent.db")
		_, err := Open(dbPath, Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database file")
		}
	})
}
