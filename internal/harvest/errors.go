package harvest

import "errors"

// Harvest sentinel errors.
var (
	// ErrNoData is returned when a (dataset, year) page has no headers
	// or no rows. Some combinations legitimately have no published
	// rankings; this is a skip, not a failure, and no artifact is
	// produced.
	ErrNoData = errors.New("no data published for unit")

	// ErrNoHarvestData is returned when a campaign finishes with zero
	// successful units. An entirely empty harvest means something is
	// systematically wrong (site markup change, network, blocking) and
	// must surface as a non-zero exit.
	ErrNoHarvestData = errors.New("campaign produced no data for any unit")
)
