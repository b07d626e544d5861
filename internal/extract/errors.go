package extract

import "errors"

// ErrHeaderTimeout is returned when the table header does not render
// within the configured bound. This fails the (dataset, year) unit; the
// unit is reported and skipped, never retried indefinitely.
var ErrHeaderTimeout = errors.New("table header did not render in time")
