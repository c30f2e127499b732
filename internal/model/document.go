package model

import "time"

// PageSection is one page's contribution to the final document: its
// heading label plus the ordered block sequence extracted from it.
type PageSection struct {
	// Index is the page's discovery order, copied from the PageTask.
	Index int `json:"index"`

	// URL is the normalized URL the section was extracted from.
	URL string `json:"url"`

	// Depth is the crawl depth of the page.
	Depth int `json:"depth"`

	// Title is the section heading label: the page title when the
	// browser reported one, otherwise a label derived from the URL.
	Title string `json:"title"`

	// Blocks is the ordered structural block sequence. Empty when the
	// page failed to render. The section is still emitted so the
	// document records that the page was visited.
	Blocks []Block `json:"blocks,omitempty"`

	// Links are the outbound link targets discovered on the page,
	// resolved against the page URL. The frontier decides which of
	// them are in scope; all of them are recorded for the archive.
	Links []string `json:"links,omitempty"`

	// Stable reports the readiness verdict for the page.
	Stable bool `json:"stable"`

	// Err holds the render failure message when the page could not be
	// rendered. A non-empty Err never aborts the crawl.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the page's render failed.
func (s *PageSection) Failed() bool {
	return s.Err != ""
}

// ExportDocument is the assembler's output: every visited page's
// section in strict discovery order, ready for a document sink.
// It is consumed once by the sink and then discarded.
type ExportDocument struct {
	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// GeneratedAt is when the document was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Header holds site chrome blocks captured once from the first
	// rendered page, when chrome capture is enabled. Nil otherwise.
	Header []Block `json:"header,omitempty"`

	// Footer holds site footer blocks captured once from the first
	// rendered page, when chrome capture is enabled. Nil otherwise.
	Footer []Block `json:"footer,omitempty"`

	// Sections are the per-page sections in discovery order.
	Sections []PageSection `json:"sections"`
}

// PageCount returns the number of page sections in the document.
func (d *ExportDocument) PageCount() int {
	return len(d.Sections)
}

// BlockCount returns the total number of blocks across all sections.
func (d *ExportDocument) BlockCount() int {
	var n int
	for i := range d.Sections {
		n += len(d.Sections[i].Blocks)
	}
	return n
}

// FailedPages returns the URLs of sections whose render failed.
func (d *ExportDocument) FailedPages() []string {
	var failed []string
	for i := range d.Sections {
		if d.Sections[i].Failed() {
			failed = append(failed, d.Sections[i].URL)
		}
	}
	return failed
}
