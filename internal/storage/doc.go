// Package storage provides the SQLite-backed unified store and the
// schema unifier that merges harvested CSV batches into it.
//
// The unifier is the ETL merge stage: it discovers every batch belonging
// to a dataset, concatenates them with a union-of-columns schema, coerces
// index columns to numbers (unparseable values become NULL, never
// errors), and replaces the destination table wholly so re-runs are
// idempotent.
package storage
