package model

import "time"

// UnitOutcome classifies the result of one (dataset, year) harvest unit.
type UnitOutcome int

const (
	// OutcomeWritten means the unit produced a batch artifact.
	OutcomeWritten UnitOutcome = iota

	// OutcomeEmpty means the source legitimately had no data for the
	// unit. This is not a failure; no artifact is produced.
	OutcomeEmpty

	// OutcomeFailed means the unit failed (typically a header timeout)
	// and was skipped.
	OutcomeFailed
)

// String returns a human-readable outcome label.
func (o UnitOutcome) String() string {
	switch o {
	case OutcomeWritten:
		return "written"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UnitResult records the outcome of one (dataset, year) harvest unit.
type UnitResult struct {
	// Dataset is the dataset identifier.
	Dataset string

	// Year is the year tag.
	Year string

	// Outcome classifies what happened to the unit.
	Outcome UnitOutcome

	// Rows is the number of rows written (zero unless OutcomeWritten).
	Rows int

	// Path is the artifact path (empty unless OutcomeWritten).
	Path string

	// Err holds the failure message for OutcomeFailed units.
	Err string

	// Duration is the wall time spent on the unit, excluding the
	// politeness delay that follows it.
	Duration time.Duration
}

// CampaignSummary aggregates the results of a full harvest campaign.
type CampaignSummary struct {
	// StartedAt and FinishedAt bound the campaign run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Units holds per-unit results in campaign order.
	Units []UnitResult
}

// Add appends a unit result to the summary.
func (s *CampaignSummary) Add(r UnitResult) {
	s.Units = append(s.Units, r)
}

// Attempted returns the total number of units driven, including empty
// and failed ones.
func (s *CampaignSummary) Attempted() int {
	return len(s.Units)
}

// Written returns the number of units that produced an artifact.
func (s *CampaignSummary) Written() int {
	return s.countOutcome(OutcomeWritten)
}

// Empty returns the number of units the source had no data for.
func (s *CampaignSummary) Empty() int {
	return s.countOutcome(OutcomeEmpty)
}

// Failed returns the number of units that failed.
func (s *CampaignSummary) Failed() int {
	return s.countOutcome(OutcomeFailed)
}

// TotalRows returns the total number of rows written across all units.
func (s *CampaignSummary) TotalRows() int {
	total := 0
	for _, u := range s.Units {
		total += u.Rows
	}
	return total
}

func (s *CampaignSummary) countOutcome(o UnitOutcome) int {
	n := 0
	for _, u := range s.Units {
		if u.Outcome == o {
			n++
		}
	}
	return n
}

// TableResult records the outcome of unifying one dataset into its
// destination table.
type TableResult struct {
	// Table is the destination table name (equals the dataset id).
	Table string

	// Batches is the number of batch files merged.
	Batches int

	// Rows is the number of rows written, verified by a count query
	// after the load.
	Rows int64

	// Columns is the unified column set in destination order.
	Columns []string
}

// UnifySummary aggregates the results of a unify run.
type UnifySummary struct {
	// DBPath is the destination database file.
	DBPath string

	// Tables holds per-dataset results in run order. Datasets with no
	// usable batches are omitted.
	Tables []TableResult
}

// TotalRows returns the total rows written across all tables.
func (s *UnifySummary) TotalRows() int64 {
	var total int64
	for _, t := range s.Tables {
		total += t.Rows
	}
	return total
}
