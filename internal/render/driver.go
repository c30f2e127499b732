package render

import (
	"context"
	"strings"
)

// Driver opens browser sessions for individual pages.
//
// Implementations must support per-call timeouts via the context and
// must leave the driver usable after a single Open fails: one page's
// navigation error never poisons the browser for the rest of the
// crawl.
type Driver interface {
	// Open navigates a fresh browser session to the given URL and
	// returns it once navigation has been issued. The context bounds
	// every operation on the returned session.
	Open(ctx context.Context, pageURL string) (Session, error)

	// Close releases the underlying browser.
	Close() error
}

// Session is one page's live browser tab.
//
// Sessions are owned by exactly one worker at a time and must be safe
// to Close after any prior call failed.
type Session interface {
	// ScrollStep scrolls the page down by roughly one viewport to
	// trigger lazy-loaded content.
	ScrollStep() error

	// Snapshot returns the current rendered markup.
	Snapshot() (string, error)

	// Title returns the document title, or "" when it cannot be read.
	Title() string

	// FinalURL returns the URL the browser ended up on after
	// redirects, falling back to the navigated URL.
	FinalURL() string

	// Close releases the tab.
	Close() error
}

// Cookie is one cookie installed on a session before navigation.
// Used by the authentication pre-step: site profiles carry session
// cookies so authenticated areas render without a login flow.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// ParseCookieHeader parses a Cookie-header style string
// ("name=value; name2=value2") into cookies. Malformed pairs are
// skipped.
func ParseCookieHeader(raw string) []Cookie {
	var cookies []Cookie
	for _, part := range strings.Split(raw, ";") {
		pair := strings.TrimSpace(part)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, Cookie{Name: name, Value: strings.TrimSpace(value)})
	}
	return cookies
}
