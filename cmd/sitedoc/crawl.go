package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sitedoc-dev/sitedoc/internal/config"
	"github.com/sitedoc-dev/sitedoc/internal/crawl"
	"github.com/sitedoc-dev/sitedoc/internal/database"
	"github.com/sitedoc-dev/sitedoc/internal/export"
	"github.com/sitedoc-dev/sitedoc/internal/extract"
	"github.com/sitedoc-dev/sitedoc/internal/frontier"
	"github.com/sitedoc-dev/sitedoc/internal/log"
	"github.com/sitedoc-dev/sitedoc/internal/model"
	"github.com/sitedoc-dev/sitedoc/internal/render"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website and assemble it into one document",
		Long: `Crawl renders a website page by page with a headless browser,
waits for each page's content to stabilize (scrolling to trigger
infinite scroll and lazy loading), extracts headings, paragraphs,
lists, tables, and links, and writes everything to a single document
in discovery order.

Examples:
  # Crawl a documentation site into a Word document
  sitedoc crawl https://docs.example.com

  # Markdown output, limited depth
  sitedoc crawl --format markdown --depth 2 https://docs.example.com

  # Capture the site's header and footer once as dedicated sections
  sitedoc crawl --capture-chrome https://docs.example.com

  # Attach to an already-running browser
  sitedoc crawl --control-url ws://127.0.0.1:9222 https://docs.example.com

Configuration file (.sitedoc) example:
  sites:
    docs.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      depth: 3
      ignorePatterns:
        - "/api/*"`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link distance from the seed page (0 = seed only)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to render")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent browser sessions")
	cmd.Flags().StringSlice("ignore",
		nil, "URL path globs to skip (repeatable)")
	cmd.Flags().StringSlice("follow",
		nil, "URL path globs to restrict crawling to (repeatable)")

	// Rendering flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultPageTimeout,
		"Hard per-page ceiling covering navigation, readiness, and extraction")
	cmd.Flags().Duration("scroll-timeout", config.DefaultScrollStepTimeout,
		"Wait after each scroll step before re-checking page content")
	cmd.Flags().Int("stable-steps", config.DefaultStableSteps,
		"Consecutive unchanged content checks required before a page counts as settled")
	cmd.Flags().Int("max-scrolls", config.DefaultMaxScrollSteps,
		"Maximum scroll attempts per page")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent by the browser")
	cmd.Flags().String("control-url", "",
		"Attach to an existing browser DevTools endpoint instead of launching one")

	// Extraction flags
	cmd.Flags().StringSlice("exclude",
		config.DefaultExcludeSelectors(), "CSS selectors excluded from page body extraction")
	cmd.Flags().Bool("capture-chrome", false,
		"Capture the first page's header and footer as dedicated sections")

	// Output flags
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Output format: docx, markdown, or both")
	cmd.Flags().StringP("output", "o", "",
		"Output file path (default: derived from the site's hostname)")

	// Configuration and storage
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitedoc in current or home directory)")
	cmd.Flags().Bool("no-db", false,
		"Skip archiving the run to the crawl database")
	cmd.Flags().String("db-dir", "",
		"Crawl database directory (default: XDG data directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking: site profiles
	// carry cookies and auth headers that must never reach the log.
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown.
	// Cancellation drains the crawl and still writes the partial
	// document for the pages rendered so far.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing pages in flight...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the
// optional .sitedoc site profile matching the seed's host.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SeedURL = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.IgnorePatterns, err = cmd.Flags().GetStringSlice("ignore")
	if err != nil {
		return nil, err
	}

	cfg.FollowPatterns, err = cmd.Flags().GetStringSlice("follow")
	if err != nil {
		return nil, err
	}

	cfg.PageTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.ScrollStepTimeout, err = cmd.Flags().GetDuration("scroll-timeout")
	if err != nil {
		return nil, err
	}

	cfg.StableSteps, err = cmd.Flags().GetInt("stable-steps")
	if err != nil {
		return nil, err
	}

	cfg.MaxScrollSteps, err = cmd.Flags().GetInt("max-scrolls")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ControlURL, err = cmd.Flags().GetString("control-url")
	if err != nil {
		return nil, err
	}

	cfg.ExcludeSelectors, err = cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return nil, err
	}

	cfg.CaptureChrome, err = cmd.Flags().GetBool("capture-chrome")
	if err != nil {
		return nil, err
	}

	cfg.Format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	// Load site profiles from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	applySiteProfile(cmd, cfg)

	return cfg, nil
}

// applySiteProfile merges the seed host's site profile into the config.
// Explicit CLI flags win over the profile; the profile wins over
// built-in defaults.
func applySiteProfile(cmd *cobra.Command, cfg *config.Config) {
	u, err := url.Parse(cfg.SeedURL)
	if err != nil || u.Host == "" {
		return // Validate or frontier.New will report the bad seed
	}

	profile := cfg.SiteConfigs.GetSiteConfig(u.Host)

	cfg.Cookie = profile.Cookie
	cfg.Headers = profile.Headers

	if profile.Depth > 0 && !cmd.Flags().Changed("depth") {
		cfg.MaxDepth = profile.Depth
	}
	if len(profile.IgnorePatterns) > 0 && !cmd.Flags().Changed("ignore") {
		cfg.IgnorePatterns = profile.IgnorePatterns
	}
	if len(profile.FollowPatterns) > 0 && !cmd.Flags().Changed("follow") {
		cfg.FollowPatterns = profile.FollowPatterns
	}
	if len(profile.ExcludeSelectors) > 0 && !cmd.Flags().Changed("exclude") {
		cfg.ExcludeSelectors = profile.ExcludeSelectors
	}
}

// runCrawl executes the crawl and writes the assembled document.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Open the crawl archive first: a broken database should fail the
	// run before the browser launches.
	var db *database.CrawlDB
	var run *database.Run
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		run, err = db.CreateRun(ctx, cfg.SeedURL)
		if err != nil {
			return fmt.Errorf("failed to create run record: %w", err)
		}
		logger.Info("database opened", "dir", cfg.DBDir, "run", run.ID())
	}

	driver, err := buildDriver(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	controller, err := buildController(cfg, driver, run, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Crawling %s...\n", cfg.SeedURL)
	startTime := time.Now()

	doc, err := controller.Run(ctx)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Crawled %d page(s) in %s\n", doc.PageCount(), elapsed.Round(time.Millisecond))
	if failed := doc.FailedPages(); len(failed) > 0 {
		fmt.Printf("%d page(s) could not be rendered:\n", len(failed))
		for _, pageURL := range failed {
			fmt.Printf("  %s\n", pageURL)
		}
	}

	if run != nil {
		if err := run.Finish(ctx, doc.PageCount()); err != nil {
			logger.Warn("failed to finish run record", "error", err)
		}
	}

	return writeDocument(cfg, doc)
}

// buildDriver creates the rod driver with the authentication pre-step
// (user agent, profile cookies, profile headers) installed.
func buildDriver(cfg *config.Config, logger *slog.Logger) (*render.RodDriver, error) {
	opts := []render.RodOption{
		render.WithUserAgent(cfg.UserAgent),
		render.WithRodLogger(logger),
	}
	if cfg.ControlURL != "" {
		opts = append(opts, render.WithControlURL(cfg.ControlURL))
	}
	if cfg.Cookie != "" {
		opts = append(opts, render.WithCookies(render.ParseCookieHeader(cfg.Cookie)))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, render.WithHeaders(cfg.Headers))
	}

	driver, err := render.NewRodDriver(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return driver, nil
}

// buildController wires the frontier, detector, and extractor into a
// crawl controller.
func buildController(cfg *config.Config, driver render.Driver, run *database.Run, logger *slog.Logger) (*crawl.Controller, error) {
	f, err := frontier.New(cfg.SeedURL,
		frontier.WithMaxDepth(cfg.MaxDepth),
		frontier.WithIgnorePatterns(cfg.IgnorePatterns),
		frontier.WithFollowPatterns(cfg.FollowPatterns),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", cfg.SeedURL, err)
	}

	detector := render.NewDetector(
		render.WithStableSteps(cfg.StableSteps),
		render.WithMaxScrollSteps(cfg.MaxScrollSteps),
		render.WithStepTimeout(cfg.ScrollStepTimeout),
		render.WithDetectorLogger(logger),
	)

	// With chrome capture on, header and footer content lands in its
	// own sections, so it is excluded from every page body.
	excludeSelectors := cfg.ExcludeSelectors
	if cfg.CaptureChrome {
		excludeSelectors = append(excludeSelectors, "header", "footer")
	}
	extractor := extract.New(
		extract.WithExcludeSelectors(excludeSelectors),
		extract.WithLogger(logger),
	)

	opts := []crawl.Option{
		crawl.WithWorkers(cfg.Workers),
		crawl.WithMaxPages(cfg.MaxPages),
		crawl.WithPageTimeout(cfg.PageTimeout),
		crawl.WithChromeCapture(cfg.CaptureChrome),
		crawl.WithControllerLogger(logger),
	}
	if run != nil {
		opts = append(opts, crawl.WithArchive(run))
	}

	return crawl.NewController(f, driver, detector, extractor, opts...), nil
}

// writeDocument renders the assembled document to the configured sinks.
// Unlike page failures, a sink failure is fatal.
func writeDocument(cfg *config.Config, doc *model.ExportDocument) error {
	base := cfg.OutputFile
	if base == "" {
		base = defaultOutputBase(cfg.SeedURL)
	}
	if dir := filepath.Dir(base); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var sinks []export.Sink
	var paths []string

	if cfg.Format == "docx" || cfg.Format == "both" {
		path := withExtension(base, ".docx")
		sinks = append(sinks, export.NewDocxSink(path))
		paths = append(paths, path)
	}
	if cfg.Format == "markdown" || cfg.Format == "both" {
		path := withExtension(base, ".md")
		f, err := createOutputFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		sinks = append(sinks, export.NewMarkdownSink(f))
		paths = append(paths, path)
	}

	if err := export.NewMultiSink(sinks...).Write(doc); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	for _, path := range paths {
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

// defaultOutputBase derives an output file base name from the seed's
// hostname ("docs.example.com" -> "docs.example.com").
func defaultOutputBase(seedURL string) string {
	if u, err := url.Parse(seedURL); err == nil && u.Host != "" {
		return u.Hostname()
	}
	return "sitedoc-output"
}

// withExtension swaps a document extension or appends one. Only known
// document extensions are swapped: a hostname base like
// "docs.example.com" must not lose its ".com".
func withExtension(path, ext string) string {
	switch current := filepath.Ext(path); current {
	case ".docx", ".md", ".markdown":
		return strings.TrimSuffix(path, current) + ext
	}
	return path + ext
}

// createOutputFile creates or truncates the output file.
func createOutputFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644) //nolint:gosec // assembled documents are not secrets
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
