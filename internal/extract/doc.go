// Package extract turns rendered ranking tables into raw rows and
// normalized headers.
//
// # Architecture
//
// The package is built around TableExtractor, which drives a
// browser.Browser through a paginated table as an explicit state
// machine:
//
//	Loading -> HeadersReady -> RowsCollected -> (next page? Loading : Done)
//
// All HTML interpretation is pure: the extractor snapshots the table's
// rendered markup once per page and parses it with golang.org/x/net/html,
// so the parsing logic is testable without a real browser. Only
// navigation, bounded waits, and pagination clicks touch the session.
//
// The package also provides the two normalization leaves used during
// extraction and cleaning: NormalizeHeader (raw column labels to stable
// snake_case identifiers) and SplitCityCountry (compound locality cells
// to city/country pairs).
package extract
