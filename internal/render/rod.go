package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// RodDriver renders pages with a headless Chromium instance driven
// over the DevTools protocol via go-rod.
type RodDriver struct {
	// browser is the shared browser process. Each Open creates its own
	// tab, so sessions never share page state.
	browser *rod.Browser

	// controlURL is the DevTools endpoint. Empty means launch our own
	// headless Chromium.
	controlURL string

	// userAgent overrides the browser's user agent when non-empty.
	userAgent string

	// cookies are installed on every page before navigation.
	cookies []Cookie

	// headers are sent with every request from every page.
	headers map[string]string

	// logger receives best-effort setup warnings.
	logger *slog.Logger
}

// RodOption configures a RodDriver.
type RodOption func(*RodDriver)

// WithControlURL attaches to an already-running browser at the given
// DevTools endpoint instead of launching one.
func WithControlURL(u string) RodOption {
	return func(d *RodDriver) {
		d.controlURL = u
	}
}

// WithUserAgent overrides the user agent sent by every session.
func WithUserAgent(ua string) RodOption {
	return func(d *RodDriver) {
		d.userAgent = ua
	}
}

// WithCookies installs the given cookies on every session before
// navigation. Cookies without a domain default to the page's host.
func WithCookies(cookies []Cookie) RodOption {
	return func(d *RodDriver) {
		d.cookies = cookies
	}
}

// WithHeaders sends the given extra HTTP headers with every request.
func WithHeaders(headers map[string]string) RodOption {
	return func(d *RodDriver) {
		d.headers = headers
	}
}

// WithRodLogger sets the logger for setup warnings.
func WithRodLogger(logger *slog.Logger) RodOption {
	return func(d *RodDriver) {
		d.logger = logger
	}
}

// NewRodDriver launches (or attaches to) a Chromium instance and
// connects to it. Call Close to release the browser.
func NewRodDriver(opts ...RodOption) (*RodDriver, error) {
	d := &RodDriver{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	if d.controlURL == "" {
		u, err := launcher.New().Headless(true).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		d.controlURL = u
	}

	browser := rod.New().ControlURL(d.controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser at %s: %w", d.controlURL, err)
	}
	d.browser = browser

	return d, nil
}

// Open creates a fresh tab, applies the authentication pre-step
// (user agent, cookies, extra headers, all of which only take effect
// for navigations issued after they are installed), then navigates.
func (d *RodDriver) Open(ctx context.Context, pageURL string) (Session, error) {
	page, err := d.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if d.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: d.userAgent}); err != nil {
			d.logger.Warn("failed to set user agent, proceeding with browser default",
				"error", err,
			)
		}
	}

	host := ""
	if u, parseErr := url.Parse(pageURL); parseErr == nil {
		host = u.Host
	}
	for _, cookie := range d.cookies {
		domain := cookie.Domain
		if domain == "" {
			domain = host
		}
		path := cookie.Path
		if path == "" {
			path = "/"
		}
		_, _ = proto.NetworkSetCookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: domain,
			Path:   path,
		}.Call(page)
	}

	if len(d.headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(d.headers),
		}.Call(page)
	}

	// Bind the per-page context before navigation so the deadline
	// covers the navigation itself and every later session call.
	p := page.Context(ctx)
	if err := p.Navigate(pageURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigation to %s failed: %w", pageURL, err)
	}

	return &rodSession{page: page, p: p, url: pageURL}, nil
}

// Close disconnects from (and, when launched by us, terminates) the
// browser.
func (d *RodDriver) Close() error {
	if d.browser == nil {
		return nil
	}
	return d.browser.Close()
}

// rodSession is one live tab bound to a per-page context.
type rodSession struct {
	// page is the unbound tab, kept for Close so cleanup still works
	// after the per-page context expired.
	page *rod.Page

	// p is the tab bound to the per-page context.
	p *rod.Page

	// url is the URL navigated to, used as the FinalURL fallback.
	url string
}

// ScrollStep scrolls down by one viewport using real mouse wheel
// events, which is what infinite-scroll implementations listen for.
func (s *rodSession) ScrollStep() error {
	res, err := s.p.Eval(`() => window.innerHeight`)
	if err != nil {
		return fmt.Errorf("failed to get viewport height: %w", err)
	}
	height := res.Value.Int()
	if height <= 0 {
		height = 800
	}
	if err := s.p.Mouse.Scroll(0, float64(height), 0); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// Snapshot returns the current rendered markup.
func (s *rodSession) Snapshot() (string, error) {
	markup, err := s.p.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to extract page markup: %w", err)
	}
	return markup, nil
}

// Title returns the document title, best-effort.
func (s *rodSession) Title() string {
	return evalStringOrEmpty(s.p, `() => document.title`)
}

// FinalURL returns the post-redirect location, best-effort.
func (s *rodSession) FinalURL() string {
	if final := evalStringOrEmpty(s.p, `() => window.location.href`); final != "" {
		return final
	}
	return s.url
}

// Close releases the tab. It uses the unbound page reference so that
// cleanup succeeds even when the per-page context has expired.
func (s *rodSession) Close() error {
	return s.page.Close()
}

// evalStringOrEmpty evaluates a JS expression and returns the string
// result, swallowing any errors (useful for optional metadata).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders
// type (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
