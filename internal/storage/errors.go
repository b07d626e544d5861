package storage

import "errors"

// Unify sentinel errors.
var (
	// ErrNoUsableBatches is returned when every dataset yields zero
	// rows at unify time. Individual datasets without batches are
	// skipped; only the total absence of data is fatal.
	ErrNoUsableBatches = errors.New("no usable batches for any dataset")

	// errNoBatchFiles signals that a single dataset has no batch files
	// on disk. Internal: callers of Run only ever see
	// ErrNoUsableBatches.
	errNoBatchFiles = errors.New("no batch files for dataset")
)
