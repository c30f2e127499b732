package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/sitedoc-dev/sitedoc/internal/extract"
	"github.com/sitedoc-dev/sitedoc/internal/frontier"
	"github.com/sitedoc-dev/sitedoc/internal/model"
	"github.com/sitedoc-dev/sitedoc/internal/render"
	"golang.org/x/sync/errgroup"
)

// Archive receives crawl results for persistence. Implementations are
// best-effort: an archive failure is logged and never fails the crawl.
type Archive interface {
	// SavePage records one completed page section.
	SavePage(ctx context.Context, section *model.PageSection) error

	// SaveLinkEdges records the outbound link edges of one page.
	SaveLinkEdges(ctx context.Context, from string, to []string) error
}

// Controller runs the crawl loop: take a task from the frontier,
// render it, wait for readiness, extract blocks and links, offer the
// links back, and hand the section to the assembler, across a bounded
// worker pool.
type Controller struct {
	frontier  *frontier.Frontier
	driver    render.Driver
	detector  *render.Detector
	extractor *extract.Extractor

	workers       int
	maxPages      int
	pageTimeout   time.Duration
	captureChrome bool

	archive Archive
	logger  *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithWorkers sets the worker-pool size. Each worker drives one
// browser session at a time; sessions are never shared.
func WithWorkers(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMaxPages sets the global page-count ceiling. Reaching it is a
// normal termination condition, not a failure.
func WithMaxPages(n int) Option {
	return func(c *Controller) {
		c.maxPages = n
	}
}

// WithPageTimeout sets the hard per-page ceiling covering navigation,
// the readiness protocol, and snapshot extraction.
func WithPageTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pageTimeout = d
		}
	}
}

// WithChromeCapture enables capturing the first rendered page's header
// and footer as standalone document sections.
func WithChromeCapture(enabled bool) Option {
	return func(c *Controller) {
		c.captureChrome = enabled
	}
}

// WithArchive attaches a crawl archive. Archive errors are logged and
// never fail the crawl.
func WithArchive(archive Archive) Option {
	return func(c *Controller) {
		c.archive = archive
	}
}

// WithControllerLogger sets the crawl logger.
func WithControllerLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller over an already-seeded frontier.
func NewController(f *frontier.Frontier, driver render.Driver, detector *render.Detector, extractor *extract.Extractor, opts ...Option) *Controller {
	c := &Controller{
		frontier:    f,
		driver:      driver,
		detector:    detector,
		extractor:   extractor,
		workers:     2,
		maxPages:    100,
		pageTimeout: 45 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run crawls until the frontier drains, the page ceiling is reached,
// or the context is cancelled. It always returns a document covering
// every page taken so far: cancellation yields a partial document,
// not an error.
func (c *Controller) Run(ctx context.Context) (*model.ExportDocument, error) {
	c.logger.Info("starting crawl",
		"seed", c.frontier.Seed(),
		"workers", c.workers,
		"max_pages", c.maxPages,
	)
	startTime := time.Now()

	crawlState := newState(c.frontier, c.maxPages)
	assembler := NewAssembler(c.frontier.Seed())
	links := newLinker(c.frontier)

	g, gctx := errgroup.WithContext(ctx)

	// Cancellation drains the pool: workers stop taking tasks, pages
	// already rendering run into their own page deadlines. g.Wait
	// cancels gctx on return, so this watcher never leaks.
	go func() {
		<-gctx.Done()
		crawlState.stop()
	}()

	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for {
				task, ok := crawlState.next()
				if !ok {
					return nil
				}

				section := c.processPage(gctx, task, assembler)
				assembler.Complete(section)

				// Link admission goes through the linker so discovery
				// indexes match a single-worker crawl regardless of
				// render completion order.
				links.submit(task, section.Links)
				crawlState.linked()

				c.saveToArchive(gctx, &section)
				crawlState.done()
			}
		})
	}

	// Workers contain all per-page failures, so the only error source
	// is the context.
	_ = g.Wait()

	c.logger.Info("crawl complete",
		"pages", crawlState.pagesTaken(),
		"discovered", c.frontier.SeenCount(),
		"elapsed", time.Since(startTime),
	)

	return assembler.Document(), nil
}

// processPage renders, settles, and extracts a single page. Every
// failure is contained here: the returned section records the error
// and the crawl moves on.
func (c *Controller) processPage(ctx context.Context, task model.PageTask, assembler *Assembler) model.PageSection {
	c.logger.Debug("rendering page",
		"url", task.URL,
		"depth", task.Depth,
		"index", task.Index,
	)

	page, err := c.renderPage(ctx, task)
	if err != nil {
		c.logger.Warn("page render failed",
			"url", task.URL,
			"error", err,
		)
		return failedSection(task, err)
	}
	if !page.Stable {
		c.logger.Info("page did not stabilize, using best-effort snapshot",
			"url", task.URL,
			"scroll_steps", page.ScrollSteps,
		)
	}

	if c.captureChrome && task.Index == 0 {
		if chrome, chromeErr := c.extractor.ExtractChrome(task.URL, page.Markup); chromeErr == nil {
			assembler.SetChrome(chrome.Header, chrome.Footer)
		} else {
			c.logger.Warn("chrome capture failed", "url", task.URL, "error", chromeErr)
		}
	}

	section := model.PageSection{
		Index:  task.Index,
		URL:    task.URL,
		Depth:  task.Depth,
		Title:  page.Title,
		Stable: page.Stable,
	}

	result, err := c.extractor.Extract(task.URL, page.Markup)
	if err != nil {
		// Extraction anomalies are recovered: the section stays, its
		// blocks are omitted.
		c.logger.Warn("extraction failed, emitting empty section",
			"url", task.URL,
			"error", err,
		)
		return section
	}
	section.Blocks = result.Blocks
	section.Links = result.CrawlLinks

	return section
}

// renderPage opens a session, runs the readiness protocol, and returns
// the rendered snapshot. The page timeout bounds the whole exchange.
func (c *Controller) renderPage(ctx context.Context, task model.PageTask) (*model.RenderedPage, error) {
	pctx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	session, err := c.driver.Open(pctx, task.URL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			c.logger.Debug("session close failed", "url", task.URL, "error", closeErr)
		}
	}()

	verdict, err := c.detector.Settle(pctx, session)
	if err != nil {
		return nil, err
	}

	return &model.RenderedPage{
		URL:         task.URL,
		FinalURL:    session.FinalURL(),
		Title:       session.Title(),
		Markup:      verdict.Markup,
		Stable:      verdict.Stable,
		ScrollSteps: verdict.ScrollSteps,
		RenderedAt:  time.Now(),
	}, nil
}

// saveToArchive persists the section best-effort.
func (c *Controller) saveToArchive(ctx context.Context, section *model.PageSection) {
	if c.archive == nil {
		return
	}
	if err := c.archive.SavePage(ctx, section); err != nil {
		c.logger.Warn("failed to archive page", "url", section.URL, "error", err)
		return
	}
	if err := c.archive.SaveLinkEdges(ctx, section.URL, section.Links); err != nil {
		c.logger.Warn("failed to archive link edges", "url", section.URL, "error", err)
	}
}

// failedSection wraps a render failure as an empty section so the
// final document still records the page.
func failedSection(task model.PageTask, err error) model.PageSection {
	return model.PageSection{
		Index: task.Index,
		URL:   task.URL,
		Depth: task.Depth,
		Err:   err.Error(),
	}
}
