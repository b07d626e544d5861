package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/citymetrics/cityrank/internal/model"
)

// Unifier merges per-unit CSV batches into one unified table per
// dataset. Destination tables are replaced wholly, so re-running the
// unifier with the same inputs yields the same tables.
type Unifier struct {
	// store is the destination database.
	store *Store

	// dataDir is the directory holding batch artifacts.
	dataDir string

	// datasets lists the dataset ids to unify, in run order.
	datasets []string

	// logger for structured logging.
	logger *slog.Logger
}

// UnifierOption configures a Unifier.
type UnifierOption func(*Unifier)

// WithUnifierLogger sets a custom logger for the unifier.
func WithUnifierLogger(logger *slog.Logger) UnifierOption {
	return func(u *Unifier) {
		u.logger = logger
	}
}

// NewUnifier creates a Unifier writing to store from dataDir.
func NewUnifier(store *Store, dataDir string, datasets []string, opts ...UnifierOption) *Unifier {
	u := &Unifier{
		store:    store,
		dataDir:  dataDir,
		datasets: datasets,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run unifies all datasets and returns the summary. Datasets without
// batches are skipped; the run fails only when every dataset yields
// zero rows.
func (u *Unifier) Run(ctx context.Context) (*model.UnifySummary, error) {
	summary := &model.UnifySummary{DBPath: u.store.Path()}

	for _, dataset := range u.datasets {
		result, err := u.unifyDataset(ctx, dataset)
		if err != nil {
			if errors.Is(err, errNoBatchFiles) {
				u.logger.Warn("no batches for dataset, skipping", "dataset", dataset)
				continue
			}
			return summary, err
		}
		summary.Tables = append(summary.Tables, *result)
	}

	if summary.TotalRows() == 0 {
		return summary, ErrNoUsableBatches
	}
	return summary, nil
}

// batchFile is one loaded CSV batch: header plus rows, all text.
type batchFile struct {
	path   string
	header model.HeaderSet
	rows   []model.RawTableRow
}

// unifyDataset loads, merges, coerces, and persists one dataset.
func (u *Unifier) unifyDataset(ctx context.Context, dataset string) (*model.TableResult, error) {
	files, err := u.discoverBatches(dataset)
	if err != nil {
		return nil, err
	}

	batches, err := loadBatchFiles(ctx, files, u.logger)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, fmt.Errorf("%w: %s", errNoBatchFiles, dataset)
	}

	columns := unionColumns(batches)
	records := flattenRecords(batches)

	if err := u.replaceTable(ctx, dataset, columns, records); err != nil {
		return nil, err
	}

	count, err := u.store.TableRowCount(ctx, dataset)
	if err != nil {
		return nil, err
	}

	u.logger.Info("dataset unified",
		"table", dataset,
		"batches", len(batches),
		"rows", count,
		"columns", len(columns),
	)

	return &model.TableResult{
		Table:   dataset,
		Batches: len(batches),
		Rows:    count,
		Columns: columns,
	}, nil
}

// discoverBatches globs the dataset's batch files in sorted order so
// merge order is deterministic across runs.
func (u *Unifier) discoverBatches(dataset string) ([]string, error) {
	pattern := filepath.Join(u.dataDir, dataset+"_*.csv")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad batch pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s (pattern %s)", errNoBatchFiles, dataset, pattern)
	}
	sort.Strings(files)
	return files, nil
}

// loadBatchFiles reads batch files concurrently. Results are slotted by
// index so the merged order matches the sorted file order regardless of
// load completion order. A file that cannot be parsed is logged and
// dropped rather than failing the dataset.
func loadBatchFiles(ctx context.Context, files []string, logger *slog.Logger) ([]*batchFile, error) {
	slots := make([]*batchFile, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bf, err := loadBatchFile(path)
			if err != nil {
				logger.Warn("could not load batch file, skipping", "path", path, "error", err)
				return nil
			}
			slots[i] = bf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := make([]*batchFile, 0, len(slots))
	for _, bf := range slots {
		if bf != nil {
			loaded = append(loaded, bf)
		}
	}
	return loaded, nil
}

// loadBatchFile reads one CSV batch, all fields as text.
func loadBatchFile(path string) (*batchFile, error) {
	f, err := os.Open(path) //nolint:gosec // Paths come from the data directory glob
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // batches are already aligned; stay tolerant anyway

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty batch file")
	}

	bf := &batchFile{path: path, header: model.HeaderSet(records[0])}
	for _, row := range records[1:] {
		bf.rows = append(bf.rows, model.RawTableRow(row))
	}
	return bf, nil
}

// unionColumns returns the union of all batch columns: the required
// text columns first, then the rest in first-seen order across batches.
func unionColumns(batches []*batchFile) []string {
	columns := make([]string, 0, 8)
	seen := make(map[string]bool)
	for _, c := range model.RequiredColumns {
		columns = append(columns, c)
		seen[c] = true
	}
	for _, bf := range batches {
		for _, c := range bf.header {
			if c == "" || seen[c] {
				continue
			}
			columns = append(columns, c)
			seen[c] = true
		}
	}
	return columns
}

// flattenRecords converts every batch row into its sparse record form.
// Required text columns are guaranteed present and whitespace-trimmed.
func flattenRecords(batches []*batchFile) []model.RankingRecord {
	var records []model.RankingRecord
	for _, bf := range batches {
		for _, row := range bf.rows {
			rec := make(model.RankingRecord, len(bf.header))
			for i, col := range bf.header {
				if i < len(row) {
					rec[col] = row[i]
				}
			}
			for _, col := range model.RequiredColumns {
				rec[col] = strings.TrimSpace(rec[col])
			}
			records = append(records, rec)
		}
	}
	return records
}

// replaceTable drops and recreates the destination table, then bulk
// inserts all records in one transaction. Every column except the
// required text columns is stored as REAL; values that do not parse as
// numbers become NULL.
func (u *Unifier) replaceTable(ctx context.Context, table string, columns []string, records []model.RankingRecord) error {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		typ := "REAL"
		if model.IsRequiredColumn(col) {
			typ = "TEXT"
		}
		defs = append(defs, quoteIdent(col)+" "+typ)
	}

	tx, err := u.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quoteIdent(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	createStmt := fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
		placeholders[i] = "?"
	}
	insertStmt := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PreparexContext(ctx, insertStmt)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = coerceValue(col, rec)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("failed to insert row into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

// coerceValue prepares one cell for insertion: required columns stay
// text (missing ones become empty strings), all others are parsed as
// numbers with failures coerced to NULL.
func coerceValue(col string, rec model.RankingRecord) any {
	raw, ok := rec[col]
	if model.IsRequiredColumn(col) {
		if !ok {
			return ""
		}
		return raw
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	return f
}
