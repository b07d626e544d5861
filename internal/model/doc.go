// Package model defines the core data types shared across the harvest and
// unify stages: raw table rows and header sets as extracted from the source
// site, cleaned record batches, and run summaries.
package model
