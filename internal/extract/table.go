package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/citymetrics/cityrank/internal/browser"
	"github.com/citymetrics/cityrank/internal/model"
)

// extractState is a state of the pagination state machine.
type extractState int

const (
	// stateLoading waits for the current page's table to render.
	stateLoading extractState = iota

	// stateHeadersReady extracts and normalizes headers. Visited once
	// per table; headers are not re-extracted across pages.
	stateHeadersReady

	// stateRowsCollected reads the current page's rows and decides on
	// the pagination transition.
	stateRowsCollected

	// stateDone is the terminal success state. The table may be empty.
	stateDone
)

// defaultMaxPages bounds pagination so a control that never disables
// cannot loop forever. The largest ranking tables span a handful of
// pages, so the default is generous.
const defaultMaxPages = 500

// TableExtractor retrieves a fully rendered, possibly paginated data
// table from the source site and returns its normalized headers plus all
// rows across all pages.
//
// The extractor owns no session state between calls; the same instance
// can extract any number of tables against the session it was built
// with, sequentially.
type TableExtractor struct {
	// browser is the live session; exclusively owned by the campaign
	// controller and shared down to the extractor for the run.
	browser browser.Browser

	// tableSelector locates the rankings table.
	tableSelector string

	// nextSelector locates the pagination next control.
	nextSelector string

	// headerTimeout bounds the wait for the header row per table.
	headerTimeout time.Duration

	// rowTimeout bounds the wait for data rows per page.
	rowTimeout time.Duration

	// renderSettle is the pause after rows appear before snapshotting,
	// giving asynchronous rendering time to finish.
	renderSettle time.Duration

	// pageSettle is the pause after a pagination click.
	pageSettle time.Duration

	// maxPages bounds pagination.
	maxPages int

	// logger for structured logging.
	logger *slog.Logger
}

// TableExtractorOption configures a TableExtractor.
type TableExtractorOption func(*TableExtractor)

// WithTableSelector sets the selector locating the rankings table.
func WithTableSelector(selector string) TableExtractorOption {
	return func(e *TableExtractor) {
		e.tableSelector = selector
	}
}

// WithNextSelector sets the selector locating the pagination control.
func WithNextSelector(selector string) TableExtractorOption {
	return func(e *TableExtractor) {
		e.nextSelector = selector
	}
}

// WithHeaderTimeout bounds the wait for the header row.
func WithHeaderTimeout(d time.Duration) TableExtractorOption {
	return func(e *TableExtractor) {
		e.headerTimeout = d
		e.rowTimeout = d
	}
}

// WithRenderSettle sets the pause after rows render before reading.
func WithRenderSettle(d time.Duration) TableExtractorOption {
	return func(e *TableExtractor) {
		e.renderSettle = d
	}
}

// WithPageSettle sets the pause after a pagination click.
func WithPageSettle(d time.Duration) TableExtractorOption {
	return func(e *TableExtractor) {
		e.pageSettle = d
	}
}

// WithMaxPages bounds the number of pages followed per table.
func WithMaxPages(n int) TableExtractorOption {
	return func(e *TableExtractor) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithLogger sets a custom logger for the extractor.
func WithLogger(logger *slog.Logger) TableExtractorOption {
	return func(e *TableExtractor) {
		e.logger = logger
	}
}

// NewTableExtractor creates a TableExtractor over the given session.
func NewTableExtractor(b browser.Browser, opts ...TableExtractorOption) *TableExtractor {
	e := &TableExtractor{
		browser:       b,
		tableSelector: "table",
		nextSelector:  "",
		headerTimeout: 20 * time.Second,
		rowTimeout:    20 * time.Second,
		renderSettle:  time.Second,
		pageSettle:    time.Second,
		maxPages:      defaultMaxPages,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract navigates to url and walks the table's pages, returning the
// normalized headers and every row aligned to header width.
//
// A header timeout returns ErrHeaderTimeout: the unit is unusable. A row
// timeout is softer: the page may legitimately have no data, so
// extraction ends with whatever was collected.
func (e *TableExtractor) Extract(ctx context.Context, url string) (model.HeaderSet, []model.RawTableRow, error) {
	if err := e.browser.Navigate(ctx, url); err != nil {
		return nil, nil, err
	}

	var headers model.HeaderSet
	var rows []model.RawTableRow
	page := 1

	state := stateLoading
	for {
		switch state {
		case stateLoading:
			if err := e.browser.WaitVisible(ctx, e.headerRowSelector(), e.headerTimeout); err != nil {
				if errors.Is(err, browser.ErrWaitTimeout) {
					return nil, nil, fmt.Errorf("%w (waited %s at %s)", ErrHeaderTimeout, e.headerTimeout, url)
				}
				return nil, nil, err
			}
			state = stateHeadersReady

		case stateHeadersReady:
			// Headers are extracted once per table; pagination does not
			// repeat the header row.
			if headers == nil {
				snapshot, err := e.browser.OuterHTML(ctx, e.tableSelector)
				if err != nil {
					return nil, nil, err
				}
				content, err := parseTableSnapshot(snapshot)
				if err != nil {
					return nil, nil, err
				}
				headers = normalizeHeaders(content.headers)
			}
			state = stateRowsCollected

		case stateRowsCollected:
			pageRows, err := e.collectPage(ctx, headers, page)
			if err != nil {
				return nil, nil, err
			}
			rows = append(rows, pageRows...)

			next, err := e.nextTransition(ctx, page)
			if err != nil {
				return nil, nil, err
			}
			if next {
				page++
				state = stateLoading
			} else {
				state = stateDone
			}

		case stateDone:
			e.logger.Debug("table extraction complete",
				"url", url,
				"pages", page,
				"columns", len(headers),
				"rows", len(rows),
			)
			return headers, rows, nil
		}
	}
}

// collectPage waits for the current page's rows to render, settles, and
// parses the table snapshot into aligned rows.
func (e *TableExtractor) collectPage(ctx context.Context, headers model.HeaderSet, page int) ([]model.RawTableRow, error) {
	if err := e.browser.WaitVisible(ctx, e.dataRowSelector(), e.rowTimeout); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			// No rows rendered. Empty tables are legitimate; report
			// nothing and let the caller decide.
			e.logger.Warn("no data rows rendered", "page", page)
			return nil, nil
		}
		return nil, err
	}

	if err := sleepContext(ctx, e.renderSettle); err != nil {
		return nil, err
	}

	snapshot, err := e.browser.OuterHTML(ctx, e.tableSelector)
	if err != nil {
		return nil, err
	}
	content, err := parseTableSnapshot(snapshot)
	if err != nil {
		return nil, err
	}

	aligned := make([]model.RawTableRow, 0, len(content.rows))
	for _, row := range content.rows {
		aligned = append(aligned, AlignRow(row, len(headers)))
	}
	return aligned, nil
}

// nextTransition inspects the pagination control and advances to the
// next page when one exists. It returns true when extraction should
// continue on a new page.
func (e *TableExtractor) nextTransition(ctx context.Context, page int) (bool, error) {
	if e.nextSelector == "" {
		return false, nil
	}
	if page >= e.maxPages {
		e.logger.Warn("pagination bound reached", "pages", page)
		return false, nil
	}

	outer, err := e.browser.OuterHTML(ctx, e.nextSelector)
	if err != nil {
		if errors.Is(err, browser.ErrElementNotFound) {
			// Single-page table.
			return false, nil
		}
		return false, err
	}

	disabled, err := controlDisabled(outer)
	if err != nil {
		return false, err
	}
	if disabled {
		return false, nil
	}

	if err := e.browser.Click(ctx, e.nextSelector); err != nil {
		return false, err
	}
	if err := sleepContext(ctx, e.pageSettle); err != nil {
		return false, err
	}
	return true, nil
}

// headerRowSelector matches the table's header cells.
func (e *TableExtractor) headerRowSelector() string {
	return e.tableSelector + " thead tr th"
}

// dataRowSelector matches the table's data rows.
func (e *TableExtractor) dataRowSelector() string {
	return e.tableSelector + " tbody tr"
}

// AlignRow returns row adjusted to exactly width cells: short rows are
// right-padded with empty strings, long rows are truncated. The result
// is always a fresh slice.
func AlignRow(row model.RawTableRow, width int) model.RawTableRow {
	aligned := make(model.RawTableRow, width)
	copy(aligned, row)
	return aligned
}

// sleepContext blocks for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
