// Package export turns an assembled crawl document into output files.
//
// A Sink consumes the whole document at once. The Word sink is the
// primary output; the Markdown sink covers plain-text workflows, and
// MultiSink fans one document out to several sinks. Unlike page-level
// failures, a sink failure is fatal to the run: a crawl whose output
// cannot be written has produced nothing.
package export
