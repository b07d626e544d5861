package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Package-level sentinel errors allow callers to use errors.Is for
// programmatic handling while keeping human-readable messages.
var (
	// ErrNoBaseURL is returned when the base URL is empty.
	ErrNoBaseURL = errors.New("no base URL configured")

	// ErrNoDatasets is returned when the dataset list is empty. A
	// campaign without datasets has nothing to harvest.
	ErrNoDatasets = errors.New("no datasets configured")

	// ErrInvalidDataset is returned when a dataset is missing its id
	// or URL slug.
	ErrInvalidDataset = errors.New("invalid dataset: id and slug are required")

	// ErrNoYears is returned when the year list is empty.
	ErrNoYears = errors.New("no years configured")

	// ErrInvalidHeaderTimeout is returned when the header wait bound
	// is not positive. A zero timeout would fail every unit instantly.
	ErrInvalidHeaderTimeout = errors.New("invalid header timeout: must be positive")

	// ErrInvalidSettle is returned when a settle delay is negative.
	// Use 0 to disable settling.
	ErrInvalidSettle = errors.New("invalid settle delay: must be non-negative")

	// ErrInvalidPolitenessDelay is returned when the delay between
	// units is negative. Use 0 to disable pacing (not recommended
	// against the live site).
	ErrInvalidPolitenessDelay = errors.New("invalid politeness delay: must be non-negative")
)
