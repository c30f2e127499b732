package export

import "github.com/sitedoc-dev/sitedoc/internal/model"

// Sink writes an assembled document to some destination.
//
// Design decision: We use an interface so the crawl pipeline does not
// care whether the document becomes a Word file, Markdown, or both.
// The document is consumed as a whole: sinks may need global facts
// (page counts, chrome sections) before emitting the first page.
type Sink interface {
	// Write renders the document to the sink's destination. A sink
	// error is fatal to the run.
	Write(doc *model.ExportDocument) error
}

// MultiSink writes the same document to several sinks.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Sink interface is different from
// io.Writer - we write documents, not raw bytes.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a Sink that writes to all provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Write renders the document to every sink, stopping on first error.
func (m *MultiSink) Write(doc *model.ExportDocument) error {
	for _, s := range m.sinks {
		if err := s.Write(doc); err != nil {
			return err
		}
	}
	return nil
}
