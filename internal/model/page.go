package model

import "time"

// PageTask is one unit of crawl work: a normalized URL together with
// the crawl depth it was discovered at.
//
// A PageTask is created when a link is accepted into the frontier and
// consumed exactly once by the crawl controller. The normalized URL is
// the idempotent dedup key: no two tasks ever share one.
type PageTask struct {
	// URL is the normalized absolute URL to render.
	URL string `json:"url"`

	// Depth is the link distance from the seed. The seed itself has
	// depth 0.
	Depth int `json:"depth"`

	// Index is the discovery order of this task: the position at which
	// the frontier accepted it. Breadth-first admission makes this
	// deterministic regardless of how many workers render pages, so it
	// is the key the assembler orders the final document by.
	Index int `json:"index"`

	// Parent is the URL of the page this task was discovered on.
	// Empty for the seed.
	Parent string `json:"parent,omitempty"`
}

// RenderedPage is the outcome of rendering one page: the settled
// markup snapshot plus readiness metadata. It is owned by the
// controller for the duration of one page's processing and discarded
// after extraction.
type RenderedPage struct {
	// URL is the URL that was navigated to.
	URL string

	// FinalURL is the URL the browser ended up on after redirects.
	// Falls back to URL when it cannot be determined.
	FinalURL string

	// Title is the document title reported by the browser.
	Title string

	// Markup is the rendered markup snapshot taken after the readiness
	// protocol finished.
	Markup string

	// Stable reports whether the readiness detector saw the page
	// stabilize. False means the per-page deadline won and Markup is a
	// best-effort snapshot, not an error.
	Stable bool

	// ScrollSteps is the number of scroll attempts the readiness
	// detector performed.
	ScrollSteps int

	// RenderedAt is when the snapshot was taken.
	RenderedAt time.Time
}
