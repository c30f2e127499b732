package frontier

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sitedoc-dev/sitedoc/internal/model"
)

// Frontier holds the breadth-first crawl state for one site: the FIFO
// queue of pending page tasks and the set of normalized URLs ever
// admitted.
type Frontier struct {
	// seed is the normalized seed URL.
	seed string

	// host is the seed's host. Only URLs on the same host are admitted.
	host string

	// maxDepth is the admission depth limit. Tasks at exactly maxDepth
	// are accepted; deeper tasks are rejected.
	maxDepth int

	// ignorePatterns are URL path patterns to reject, in glob syntax.
	ignorePatterns []string

	// followPatterns, when non-empty, restrict admission to paths
	// matching at least one pattern.
	followPatterns []string

	// seen holds every normalized URL ever admitted. Monotonic.
	seen map[string]bool

	// pending is the FIFO queue of admitted tasks not yet taken.
	pending []model.PageTask

	// admitted counts tasks ever admitted; it assigns discovery order.
	admitted int

	// taken counts tasks handed out via Take.
	taken int

	// mu guards all fields above. A single mutex keeps the seen-set
	// check-and-insert atomic with respect to concurrent offers.
	mu sync.Mutex
}

// Option configures a Frontier.
type Option func(*Frontier)

// WithMaxDepth sets the admission depth limit.
// 0 = only the seed, 1 = the seed plus pages it links to, and so on.
func WithMaxDepth(depth int) Option {
	return func(f *Frontier) {
		f.maxDepth = depth
	}
}

// WithIgnorePatterns sets URL path patterns to reject during admission.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) Option {
	return func(f *Frontier) {
		f.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to restrict admission to.
// If set, only URLs whose path matches at least one pattern are
// admitted. Empty means all paths are allowed (subject to ignore
// patterns).
func WithFollowPatterns(patterns []string) Option {
	return func(f *Frontier) {
		f.followPatterns = patterns
	}
}

// New creates a Frontier seeded with the given URL at depth 0.
// The seed's host defines the crawl scope.
func New(seedURL string, opts ...Option) (*Frontier, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid seed URL %q: scheme must be http or https", seedURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid seed URL %q: missing host", seedURL)
	}

	f := &Frontier{
		host:     strings.ToLower(u.Host),
		maxDepth: 5,
		seen:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}

	// The seed bypasses pattern filtering: a crawl that rejects its own
	// starting point is never what the caller meant.
	normalized := Normalize(seedURL)
	f.seed = normalized
	f.seen[normalized] = true
	f.pending = append(f.pending, model.PageTask{URL: normalized, Depth: 0, Index: 0})
	f.admitted = 1

	return f, nil
}

// Offer proposes a URL for crawling at the given depth. It returns
// true when the URL was admitted to the pending queue.
//
// Rejection is silent and not an error: out-of-scope hosts, excluded
// paths, depths past the limit, and already-seen URLs are all expected
// filtering outcomes.
func (f *Frontier) Offer(rawURL string, depth int, parent string) bool {
	if depth > f.maxDepth {
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !strings.EqualFold(u.Host, f.host) {
		return false
	}
	if !f.pathAllowed(u) {
		return false
	}

	normalized := Normalize(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[normalized] {
		return false
	}
	f.seen[normalized] = true
	f.pending = append(f.pending, model.PageTask{
		URL:    normalized,
		Depth:  depth,
		Index:  f.admitted,
		Parent: parent,
	})
	f.admitted++
	return true
}

// Take pops and returns the next task in FIFO order.
// The second return value is false when the pending queue is empty,
// which does not mean the crawl is over while other workers may still
// offer links.
func (f *Frontier) Take() (model.PageTask, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return model.PageTask{}, false
	}
	task := f.pending[0]
	f.pending = f.pending[1:]
	f.taken++
	return task, true
}

// Seed returns the normalized seed URL.
func (f *Frontier) Seed() string {
	return f.seed
}

// PendingLen returns the number of tasks waiting in the queue.
func (f *Frontier) PendingLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// SeenCount returns the number of unique URLs ever admitted.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// pathAllowed applies the ignore/follow pattern rules to the URL path.
func (f *Frontier) pathAllowed(u *url.URL) bool {
	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range f.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(f.followPatterns) > 0 {
		for _, pattern := range f.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// Normalize canonicalizes a URL for deduplication: the fragment is
// dropped (it never changes server-side content), scheme and host are
// lower-cased, and an empty path becomes "/" so that
// "http://example.com" and "http://example.com/" dedup to one entry.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	// Prefix patterns like "/admin/*" should match the whole subtree,
	// which filepath.Match alone does not do across separators.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Extension patterns like "*.pdf" match on the suffix regardless
	// of directory depth.
	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Try the filename alone for patterns without separators.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
