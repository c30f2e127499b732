package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/sitedoc-dev/sitedoc/internal/model"
	"golang.org/x/net/html"
)

// DefaultExcludeSelectors are the boilerplate containers whose content
// is suppressed from page bodies. Links inside them stay visible as
// link blocks but never become crawl candidates: every page links to
// the whole navigation, and admitting those links from every page adds
// nothing the seed's own nav didn't already offer.
var DefaultExcludeSelectors = []string{"nav", "[role=navigation]"}

// chromeExcludeSelectors strips navigation from captured site chrome.
// The configured body exclusions deliberately do not apply there: with
// chrome capture on, the page bodies exclude header and footer, and
// applying that same set inside ExtractChrome would suppress the very
// content being captured.
var chromeExcludeSelectors = []string{"nav", "[role=navigation]"}

// Extractor converts rendered markup into structural blocks.
//
// Design decision: We parse with golang.org/x/net/html and walk the
// node tree ourselves rather than querying with selectors, because
// block order must be document order, and a selector query per block type
// would lose the interleaving of headings, paragraphs, and tables.
// Selectors (cascadia) are used only to mark exclusion containers.
type Extractor struct {
	// exclude are the compiled exclusion selectors for page bodies.
	exclude []cascadia.Selector

	// chromeExclude are the compiled selectors removed from captured
	// chrome. Fixed to navigation containers, independent of exclude.
	chromeExclude []cascadia.Selector

	logger *slog.Logger
}

// Result is the extractor's output for one page.
type Result struct {
	// Blocks is the ordered structural block sequence.
	Blocks []model.Block

	// CrawlLinks are the resolved absolute link targets eligible for
	// frontier admission: http(s) links found outside exclusion
	// containers, deduplicated, in first-seen order.
	CrawlLinks []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithExcludeSelectors replaces the default exclusion selectors.
// Invalid selectors are logged and skipped rather than failing the
// crawl.
func WithExcludeSelectors(selectors []string) Option {
	return func(e *Extractor) {
		e.exclude = e.compileSelectors(selectors)
	}
}

// WithLogger sets the logger for extraction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor with the default exclusion selectors.
func New(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	e.exclude = e.compileSelectors(DefaultExcludeSelectors)
	for _, opt := range opts {
		opt(e)
	}
	e.chromeExclude = e.compileSelectors(chromeExcludeSelectors)
	return e
}

func (e *Extractor) compileSelectors(selectors []string) []cascadia.Selector {
	var compiled []cascadia.Selector
	for _, raw := range selectors {
		sel, err := cascadia.Compile(raw)
		if err != nil {
			e.logger.Warn("skipping invalid exclusion selector",
				"selector", raw,
				"error", err,
			)
			continue
		}
		compiled = append(compiled, sel)
	}
	return compiled
}

// Extract walks the markup in document order and returns the block
// sequence plus outbound crawl candidates. Relative links are resolved
// against baseURL.
func (e *Extractor) Extract(baseURL, markup string) (*Result, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("markup parse failed: %w", err)
	}

	w := &walker{
		base:     base,
		excluded: excludedNodes(root, e.exclude),
		result:   &Result{},
		seen:     make(map[string]bool),
	}
	w.walk(root, false)

	return w.result, nil
}

// ChromeResult holds the site chrome captured once per crawl.
type ChromeResult struct {
	// Header holds the blocks of the first <header> element, with nav
	// content removed.
	Header []model.Block

	// Footer holds the blocks of the first <footer> element.
	Footer []model.Block
}

// ExtractChrome extracts the first header and footer elements of a
// page as standalone block sequences. Navigation containers inside
// them are removed entirely, links included. The configured body
// exclusions do not apply here, so excluding header and footer from
// page bodies leaves the captured chrome intact.
func (e *Extractor) ExtractChrome(baseURL, markup string) (*ChromeResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("markup parse failed: %w", err)
	}

	excluded := excludedNodes(root, e.chromeExclude)
	chrome := &ChromeResult{}
	doc := goquery.NewDocumentFromNode(root)

	if nodes := doc.Find("header").First().Nodes; len(nodes) > 0 {
		w := &walker{base: base, excluded: excluded, result: &Result{}, seen: make(map[string]bool)}
		w.walk(nodes[0], true)
		chrome.Header = w.result.Blocks
	}
	if nodes := doc.Find("footer").First().Nodes; len(nodes) > 0 {
		w := &walker{base: base, excluded: excluded, result: &Result{}, seen: make(map[string]bool)}
		w.walk(nodes[0], true)
		chrome.Footer = w.result.Blocks
	}

	return chrome, nil
}

// excludedNodes marks every node matched by an exclusion selector.
func excludedNodes(root *html.Node, selectors []cascadia.Selector) map[*html.Node]bool {
	excluded := make(map[*html.Node]bool)
	for _, sel := range selectors {
		for _, n := range cascadia.QueryAll(root, sel) {
			excluded[n] = true
		}
	}
	return excluded
}

// walker carries the per-extraction state through the recursive tree
// walk.
type walker struct {
	base     *url.URL
	excluded map[*html.Node]bool
	result   *Result

	// seen dedups crawl candidates within one page.
	seen map[string]bool
}

// walk starts the recursive dispatch. chrome marks a walk over site
// chrome (header/footer capture), where anchors never become crawl
// candidates.
func (w *walker) walk(n *html.Node, chrome bool) {
	w.walkNode(n, false, chrome)
}

// walkNode dispatches on element type. inExcluded marks that the
// current subtree belongs to a boilerplate container: text content is
// suppressed there, but anchors still surface as link blocks.

func (w *walker) walkNode(n *html.Node, inExcluded, chrome bool) {
	if n.Type == html.ElementNode {
		if w.excluded[n] {
			// Chrome walks drop excluded subtrees outright: a nav
			// inside a captured header contributes nothing, not even
			// link blocks.
			if chrome {
				return
			}
			inExcluded = true
		}

		switch n.Data {
		case "script", "style", "noscript", "template", "iframe", "svg":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			w.emitHeading(n, inExcluded, chrome)
			return
		case "p", "blockquote", "pre":
			w.emitParagraph(n, inExcluded, chrome)
			return
		case "ul", "ol":
			w.emitList(n, 0, inExcluded, chrome)
			return
		case "table":
			w.emitTable(n, inExcluded, chrome)
			return
		case "a":
			w.emitAnchor(n, inExcluded, chrome)
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walkNode(c, inExcluded, chrome)
	}
}

func (w *walker) emitHeading(n *html.Node, inExcluded, chrome bool) {
	if !inExcluded {
		level := int(n.Data[1] - '0')
		w.appendBlock(model.Heading(level, inlineText(n)))
	}
	w.collectAnchors(n, inExcluded, chrome)
}

func (w *walker) emitParagraph(n *html.Node, inExcluded, chrome bool) {
	if !inExcluded {
		w.appendBlock(model.Paragraph(inlineText(n)))
	}
	w.collectAnchors(n, inExcluded, chrome)
}

// emitList emits one list item per li, then recurses into nested lists
// with an incremented depth. Empty list items are preserved so that
// numbering in the final document stays faithful.
func (w *walker) emitList(n *html.Node, depth int, inExcluded, chrome bool) {
	ordered := n.Data == "ol"
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		if !inExcluded {
			w.appendBlock(model.ListItem(depth, ordered, inlineTextShallow(li)))
		}
		w.collectAnchorsShallow(li, inExcluded, chrome)

		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				w.emitList(c, depth+1, inExcluded, chrome)
			}
		}
	}
}

func (w *walker) emitTable(n *html.Node, inExcluded, chrome bool) {
	if !inExcluded {
		for _, tr := range elementsByTag(n, "tr") {
			var cells []string
			for c := tr.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, inlineText(c))
				}
			}
			if len(cells) > 0 {
				w.appendBlock(model.TableRow(cells))
			}
		}
	}
	w.collectAnchors(n, inExcluded, chrome)
}

func (w *walker) emitAnchor(n *html.Node, inExcluded, chrome bool) {
	target := w.resolveLink(getAttr(n, "href"))
	if target == "" {
		return
	}
	w.appendBlock(model.Link(inlineText(n), target))
	if !inExcluded && !chrome {
		w.addCrawlCandidate(target)
	}
}

// collectAnchors emits a link block (and crawl candidate, when
// allowed) for every anchor inside the subtree. Containers call it
// after emitting their own block so anchors keep document order
// relative to the blocks around them.
func (w *walker) collectAnchors(n *html.Node, inExcluded, chrome bool) {
	if n.Type == html.ElementNode && n.Data == "a" {
		w.emitAnchor(n, inExcluded, chrome)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.collectAnchors(c, inExcluded, chrome)
	}
}

// collectAnchorsShallow is collectAnchors minus nested lists, which
// emitList handles on its own recursion.
func (w *walker) collectAnchorsShallow(n *html.Node, inExcluded, chrome bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			continue
		}
		if c.Type == html.ElementNode && c.Data == "a" {
			w.emitAnchor(c, inExcluded, chrome)
			continue
		}
		w.collectAnchorsShallow(c, inExcluded, chrome)
	}
}

func (w *walker) appendBlock(b model.Block) {
	if b.IsEmpty() {
		return
	}
	w.result.Blocks = append(w.result.Blocks, b)
}

func (w *walker) addCrawlCandidate(target string) {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return
	}
	if w.seen[target] {
		return
	}
	w.seen[target] = true
	w.result.CrawlLinks = append(w.result.CrawlLinks, target)
}

// resolveLink resolves an href against the page URL, returning "" for
// non-navigational schemes.
//
// Design decision: mailto/tel/javascript/data links are dropped
// entirely rather than kept as display-only link blocks. They carry
// no document content, and javascript: pseudo-links in particular are
// noise on script-heavy sites.
func (w *walker) resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return w.base.ResolveReference(u).String()
}

// inlineText extracts the text of a subtree: text nodes concatenated
// with single-space separators, whitespace collapsed, trimmed.
func inlineText(n *html.Node) string {
	var b strings.Builder
	appendText(n, &b, false)
	return strings.Join(strings.Fields(b.String()), " ")
}

// inlineTextShallow is inlineText minus nested list subtrees, used for
// li elements whose nested lists become their own items.
func inlineTextShallow(n *html.Node) string {
	var b strings.Builder
	appendText(n, &b, true)
	return strings.Join(strings.Fields(b.String()), " ")
}

func appendText(n *html.Node, b *strings.Builder, skipLists bool) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteString(" ")
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		case "ul", "ol":
			if skipLists {
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, b, skipLists)
	}
}

// elementsByTag returns all elements with the given tag in document
// order.
func elementsByTag(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return found
}

// getAttr retrieves an attribute value from an element node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
