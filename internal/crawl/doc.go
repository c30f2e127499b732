// Package crawl orchestrates the crawl: it drives the frontier, the
// render driver, the readiness detector, and the structure extractor
// across a bounded worker pool, and assembles the per-page results
// into one export document.
//
// # Ordering guarantee
//
// Page processing order across workers is not deterministic, but the
// final document order always is: sections are buffered by the page's
// discovery index and emitted in strict discovery order, so a crawl
// with one worker and a crawl with eight produce identically ordered
// documents.
//
// # Failure containment
//
// A single page's render failure (navigation error, timeout, driver
// crash) is caught at the worker boundary: the page becomes an empty
// but titled section and the crawl continues. Only configuration and
// sink failures ever abort a run.
package crawl
