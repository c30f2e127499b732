// Package database provides SQLite-based storage for crawl runs.
//
// Each crawl run is recorded with its visited pages and the link edges
// between them, so past crawls can be inspected without re-rendering
// the site. Storage is best-effort from the crawl's point of view: a
// database failure is logged by the caller and never aborts a run.
package database
