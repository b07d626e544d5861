package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/citymetrics/cityrank/internal/browser"
	"github.com/citymetrics/cityrank/internal/config"
	"github.com/citymetrics/cityrank/internal/extract"
	"github.com/citymetrics/cityrank/internal/model"
)

// sentinelTokens are the source site's missing-value markers, compared
// case-insensitively and replaced with true-empty cells before the batch
// is written.
var sentinelTokens = []string{"N/A", "-"}

// Harvester produces one cleaned record batch per (dataset, year) unit.
type Harvester struct {
	// extractor drives the paginated table retrieval.
	extractor *extract.TableExtractor

	// baseURL is the root of the rankings site.
	baseURL string

	// dataDir receives the per-unit CSV artifacts.
	dataDir string

	// logger for structured logging.
	logger *slog.Logger
}

// NewHarvester creates a Harvester over the given session, configured
// from cfg's selectors and delays.
func NewHarvester(b browser.Browser, cfg *config.Config, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{
		extractor: extract.NewTableExtractor(b,
			extract.WithTableSelector(cfg.TableSelector),
			extract.WithNextSelector(cfg.NextSelector),
			extract.WithHeaderTimeout(cfg.HeaderTimeout),
			extract.WithRenderSettle(cfg.RenderSettle),
			extract.WithPageSettle(cfg.PageSettle),
			extract.WithLogger(logger),
		),
		baseURL: cfg.BaseURL,
		dataDir: cfg.DataDir,
		logger:  logger,
	}
}

// RankingsURL builds the source URL for a dataset slug and year tag.
// The rolling "current" ranking lives on its own page; historical years
// are selected by query parameter.
func RankingsURL(baseURL, slug, year string) string {
	if year == config.YearCurrent {
		return fmt.Sprintf("%s/%s/rankings_current.jsp", baseURL, slug)
	}
	return fmt.Sprintf("%s/%s/rankings.jsp?title=%s", baseURL, slug, year)
}

// HarvestUnit extracts, cleans, and writes one (dataset, year) batch.
// It returns ErrNoData when the page has no headers or rows; any other
// error is a unit failure. On success the returned batch carries the
// artifact path and row count.
func (h *Harvester) HarvestUnit(ctx context.Context, dataset config.Dataset, year string) (*model.Batch, error) {
	url := RankingsURL(h.baseURL, dataset.Slug, year)
	h.logger.Info("harvesting unit", "dataset", dataset.ID, "year", year, "url", url)

	headers, rows, err := h.extractor.Extract(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("extraction failed for %s/%s: %w", dataset.ID, year, err)
	}
	if len(headers) == 0 || len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoData, dataset.ID, year)
	}

	batch := buildBatch(dataset.ID, year, headers, rows)

	path, err := WriteBatch(h.dataDir, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to write batch for %s/%s: %w", dataset.ID, year, err)
	}
	batch.Path = path

	h.logger.Info("unit written",
		"dataset", dataset.ID,
		"year", year,
		"rows", batch.RowCount(),
		"columns", len(batch.Header),
		"path", path,
	)
	return batch, nil
}

// buildBatch cleans aligned rows into a batch: the compound locality
// column is split into city/country, the year tag is attached as a
// literal column, and missing-value sentinels become empty cells.
func buildBatch(datasetID, year string, headers model.HeaderSet, rows []model.RawTableRow) *model.Batch {
	cityIdx := locateCityColumn(headers)

	// Output column order: original columns minus the compound
	// locality column, then the derived city/country pair and the year
	// tag. When no locality column exists the original set is kept and
	// the unifier fills city/country later.
	outHeader := make(model.HeaderSet, 0, len(headers)+3)
	for i, hdr := range headers {
		if i == cityIdx {
			continue
		}
		outHeader = append(outHeader, hdr)
	}
	if cityIdx >= 0 {
		outHeader = append(outHeader, model.ColumnCity, model.ColumnCountry)
	}
	outHeader = append(outHeader, model.ColumnYear)

	outRows := make([]model.RawTableRow, 0, len(rows))
	for _, row := range rows {
		out := make(model.RawTableRow, 0, len(outHeader))
		for i, cell := range row {
			if i == cityIdx {
				continue
			}
			out = append(out, cleanSentinel(cell))
		}
		if cityIdx >= 0 {
			city, country := extract.SplitCityCountry(row[cityIdx])
			out = append(out, cleanSentinel(city), cleanSentinel(country))
		}
		out = append(out, year)
		outRows = append(outRows, out)
	}

	return &model.Batch{
		Dataset: datasetID,
		Year:    year,
		Header:  outHeader,
		Rows:    outRows,
	}
}

// locateCityColumn returns the index of the first column whose
// normalized name contains "city", or -1.
func locateCityColumn(headers model.HeaderSet) int {
	for i, h := range headers {
		if strings.Contains(h, model.ColumnCity) {
			return i
		}
	}
	return -1
}

// cleanSentinel replaces missing-value sentinel tokens with a true-empty
// cell. Comparison is case-insensitive after trimming.
func cleanSentinel(cell string) string {
	trimmed := strings.TrimSpace(cell)
	for _, tok := range sentinelTokens {
		if strings.EqualFold(trimmed, tok) {
			return ""
		}
	}
	return trimmed
}
