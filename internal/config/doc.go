// Package config provides configuration structures and utilities for
// cityrank. It defines the harvest matrix (datasets and years), request
// pacing, page selectors, and storage paths, and supports layering of
// defaults, a YAML configuration file, environment variables, and CLI
// flags.
package config
