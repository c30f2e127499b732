package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for typical documentation and marketing sites
// rendered by a local headless browser.
const (
	// DefaultMaxDepth of 5 reaches every page of most documentation
	// sites while keeping runaway link farms bounded. Depth 0 means
	// crawl only the seed page.
	DefaultMaxDepth = 5

	// DefaultMaxPages is the maximum number of pages rendered per run.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 100

	// DefaultPageTimeout is the hard per-page ceiling covering
	// navigation, the readiness protocol, and snapshot extraction.
	// 45 seconds accommodates heavy single-page applications without
	// letting one broken page stall the whole run.
	DefaultPageTimeout = 45 * time.Second

	// DefaultScrollStepTimeout is the wait after each scroll step
	// before re-fingerprinting the page. 1.5 seconds is enough for most
	// lazy-loading implementations to fetch and render the next batch.
	DefaultScrollStepTimeout = 1500 * time.Millisecond

	// DefaultStableSteps is the number of consecutive unchanged content
	// fingerprints required before a page is considered settled.
	DefaultStableSteps = 2

	// DefaultMaxScrollSteps caps scroll attempts per page so a page
	// that genuinely never stops growing (an infinite feed) still
	// terminates within the page timeout.
	DefaultMaxScrollSteps = 40

	// DefaultWorkers is the number of concurrent browser sessions.
	// Each worker renders one page at a time; two workers keep the
	// browser busy without hammering the target site.
	DefaultWorkers = 2

	// DefaultUserAgent identifies sitedoc in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify crawler traffic in their logs.
	DefaultUserAgent = "sitedoc/1.0 (+https://github.com/sitedoc-dev/sitedoc)"

	// DefaultFormat is the default output format. Word output is the
	// primary deliverable; markdown is opt-in.
	DefaultFormat = "docx"

	// AppName is the application name used for XDG directory paths.
	AppName = "sitedoc"
)

// DefaultExcludeSelectors are the CSS selectors whose subtrees are
// excluded from page body extraction by default. Navigation chrome
// repeats on every page and would drown the actual content.
func DefaultExcludeSelectors() []string {
	return []string{"nav", "[role=navigation]"}
}

// Config holds all configuration options for sitedoc.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, RenderConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// SeedURL is the page the crawl starts from. Scope is derived from
	// it: only URLs on the same host are crawled.
	SeedURL string

	// MaxDepth is the maximum link distance from the seed. Depth 0
	// means only the seed page is rendered.
	MaxDepth int

	// MaxPages is the maximum number of pages rendered per run.
	MaxPages int

	// PageTimeout is the hard per-page ceiling covering navigation,
	// readiness, and extraction.
	PageTimeout time.Duration

	// ScrollStepTimeout is the wait after each scroll step before the
	// page content is re-fingerprinted.
	ScrollStepTimeout time.Duration

	// StableSteps is the number of consecutive unchanged fingerprints
	// required before a page is considered settled.
	StableSteps int

	// MaxScrollSteps caps scroll attempts per page.
	MaxScrollSteps int

	// Workers is the number of concurrent browser sessions.
	Workers int

	// UserAgent is the User-Agent header the browser sends.
	UserAgent string

	// ExcludeSelectors are CSS selectors whose subtrees are dropped
	// from page body extraction. Links inside them are still recorded
	// as link blocks but never become crawl candidates.
	ExcludeSelectors []string

	// IgnorePatterns are URL path globs to skip during crawling.
	IgnorePatterns []string

	// FollowPatterns are URL path globs to restrict crawling to.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string

	// Cookie is an HTTP cookie header value installed on every page
	// before navigation. Format: "name=value" or "a=1; b=2".
	// Usually populated from a site profile.
	Cookie string

	// Headers are extra HTTP headers installed on every page before
	// navigation. Usually populated from a site profile.
	Headers map[string]string

	// Format selects the output: "docx", "markdown", or "both".
	Format string

	// OutputFile is the output path. When empty, a name is derived from
	// the seed host and the format.
	OutputFile string

	// CaptureChrome captures the first rendered page's header and
	// footer as dedicated document sections and excludes them from
	// every page body.
	CaptureChrome bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ControlURL is an existing browser DevTools endpoint to attach to.
	// When empty, a headless browser is launched locally.
	ControlURL string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sitedoc in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific profiles loaded from the config
	// file. This is populated by LoadConfigFile and merged by seed host.
	SiteConfigs *File

	// DBDir is the directory path for storing the SQLite crawl archive.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to archive the run to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, worker
// count). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxDepth:          DefaultMaxDepth,
		MaxPages:          DefaultMaxPages,
		PageTimeout:       DefaultPageTimeout,
		ScrollStepTimeout: DefaultScrollStepTimeout,
		StableSteps:       DefaultStableSteps,
		MaxScrollSteps:    DefaultMaxScrollSteps,
		Workers:           DefaultWorkers,
		UserAgent:         DefaultUserAgent,
		ExcludeSelectors:  DefaultExcludeSelectors(),
		Format:            DefaultFormat,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for sitedoc.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/sitedoc
// On macOS: ~/Library/Application Support/sitedoc
// On Windows: %LOCALAPPDATA%\sitedoc
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitedoc.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/sitedoc
// On macOS: ~/Library/Application Support/sitedoc
// On Windows: %APPDATA%\sitedoc
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before the browser launches.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeed
	}
	if c.PageTimeout <= 0 || c.ScrollStepTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.StableSteps <= 0 {
		return ErrInvalidStableSteps
	}
	if c.MaxScrollSteps <= 0 {
		return ErrInvalidScrollSteps
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	switch c.Format {
	case "docx", "markdown", "both":
	default:
		return ErrInvalidFormat
	}

	return nil
}
