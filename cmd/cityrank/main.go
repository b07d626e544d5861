// Package main provides the entry point for the cityrank CLI.
//
// cityrank harvests city ranking tables from a JavaScript-rendered
// rankings site, cleans them into per-unit CSV batch files, and unifies
// the batches into a local SQLite database for analysis.
//
// Usage:
//
//	cityrank harvest
//	cityrank unify
//
// See --help for all available options.
package main

// main is the entry point for cityrank.
func main() {
	Execute()
}
