package model

// Required column names present in every unified table.
// These are the only columns that stay TEXT after numeric coercion;
// everything else is coerced to REAL-or-NULL by the unifier.
const (
	ColumnCity    = "city"
	ColumnCountry = "country"
	ColumnYear    = "year"
)

// RequiredColumns lists the columns guaranteed to exist in every unified
// table, in their canonical order.
var RequiredColumns = []string{ColumnCity, ColumnCountry, ColumnYear}

// IsRequiredColumn reports whether name is one of the always-text columns.
func IsRequiredColumn(name string) bool {
	return name == ColumnCity || name == ColumnCountry || name == ColumnYear
}

// HeaderSet is the ordered sequence of normalized column identifiers for
// one (dataset, year) table. It defines the alignment contract for every
// row extracted from that table.
type HeaderSet []string

// Index returns the position of the named column, or -1 if absent.
func (h HeaderSet) Index(name string) int {
	for i, v := range h {
		if v == name {
			return i
		}
	}
	return -1
}

// Equal reports whether two header sets have identical columns in
// identical order.
func (h HeaderSet) Equal(other HeaderSet) bool {
	if len(h) != len(other) {
		return false
	}
	for i, v := range h {
		if v != other[i] {
			return false
		}
	}
	return true
}

// RawTableRow is an ordered sequence of raw cell text as extracted from
// one rendered table row, not yet aligned to a header set. Rows are
// created per page, consumed by alignment, and discarded.
type RawTableRow []string

// Batch is the cleaned output of one (dataset, year) harvest unit:
// aligned rows under a stable header set, plus provenance.
type Batch struct {
	// Dataset is the dataset identifier (e.g. "cost_of_living").
	Dataset string

	// Year is the year tag: "current" or a four-digit year.
	Year string

	// Header is the normalized column set, including the derived
	// city/country/year columns.
	Header HeaderSet

	// Rows are the cleaned data rows, each exactly len(Header) cells.
	Rows []RawTableRow

	// Path is the artifact path once the batch has been written.
	Path string
}

// RowCount returns the number of data rows in the batch.
func (b *Batch) RowCount() int {
	return len(b.Rows)
}

// RankingRecord is the sparse column-to-value form of one row. Batches
// harvested in different years carry different column sets, so the
// unifier works on this shape and materializes missing columns as NULL.
type RankingRecord map[string]string
