// Package model defines the core data types shared across the crawl
// engine: page tasks, rendered snapshots, structural blocks, and the
// assembled export document.
//
// Design decision: All types in this package are plain data with small
// helper methods and no behavior that requires external dependencies.
// This keeps the dependency graph acyclic: every other internal
// package may import model, and model imports nothing but the
// standard library.
package model
