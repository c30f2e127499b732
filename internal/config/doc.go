// Package config provides configuration structures and utilities for
// sitedoc. It defines the crawl options, the readiness and extraction
// tunables, the output format selection, and per-site profiles loaded
// from the .sitedoc configuration file.
package config
