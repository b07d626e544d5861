// Package log provides slog handler utilities for cityrank. The harvest
// pipeline passes page snapshots and raw cell data through its logging
// call sites, so the package offers a handler wrapper that truncates
// oversized attribute values before they reach the underlying handler.
package log
