// Package render drives a headless browser to produce fully rendered
// markup snapshots of pages whose content is populated client-side.
//
// The package has three parts:
//
//   - Driver/Session: the small interface the crawl controller talks
//     to. A Driver opens one Session per page; a Session can scroll,
//     snapshot the rendered markup, and report the document title.
//   - RodDriver: the go-rod implementation. It launches (or attaches
//     to) a Chromium instance and installs per-site cookies, headers,
//     and the user agent on every page before navigation.
//   - Detector: the readiness protocol. It decides when a dynamically
//     loading page (infinite scroll, delayed AJAX) has stopped
//     producing new content and it is safe to extract.
//
// Design decision: The controller depends on the interfaces, not on
// go-rod. Tests drive the crawl with an in-memory fake, and swapping
// the browser automation library touches only this package.
package render
