// Package harvest orchestrates the scraping campaign: per-unit
// harvesting of one (dataset, year) ranking table into a cleaned CSV
// batch, and the campaign controller that drives the full dataset x year
// matrix over a single browsing session.
//
// # Failure policy
//
// A unit that times out or yields no data is logged and skipped; the
// campaign always continues to the next unit. Only a campaign with zero
// successful units is a hard failure. The browsing session is owned by
// the campaign for the whole run and released on every exit path.
package harvest
