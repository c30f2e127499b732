package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/sha3"
)

// Readiness defaults. Overridable per Detector via options.
const (
	// DefaultStableSteps is the number of consecutive scroll steps that
	// must produce no content change before a page is declared stable.
	// Two confirmations filter out slow single-batch AJAX loads without
	// paying much on genuinely static pages.
	DefaultStableSteps = 2

	// DefaultMaxScrollSteps caps the total scroll attempts per page.
	// Pages with perpetually changing content (live tickers, rotating
	// ads) never fingerprint-stabilize; the cap guarantees forward
	// progress even before the per-page deadline fires.
	DefaultMaxScrollSteps = 40

	// DefaultStepTimeout is how long to wait after each scroll for new
	// content to arrive before re-fingerprinting.
	DefaultStepTimeout = 1500 * time.Millisecond
)

// Verdict is the readiness detector's result for one page.
type Verdict struct {
	// Markup is the final rendered snapshot. Always populated, even
	// when the page never stabilized: the best-effort snapshot is
	// still extracted.
	Markup string

	// Stable reports whether the required number of consecutive
	// unchanged fingerprints was observed. False is not an error.
	Stable bool

	// ScrollSteps is the number of scroll attempts performed.
	ScrollSteps int
}

// Detector decides when a dynamically loading page has stopped
// producing new content.
//
// Protocol: fingerprint the current markup, request one scroll step,
// wait up to the step timeout for new content, re-fingerprint. The
// page is stable after StableSteps consecutive unchanged fingerprints.
// The context deadline (the per-page ceiling) always wins: when it
// fires mid-protocol the last good snapshot is returned with an
// unstable verdict rather than an error.
type Detector struct {
	stableSteps int
	maxSteps    int
	stepTimeout time.Duration
	logger      *slog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithStableSteps sets the consecutive no-change threshold.
func WithStableSteps(n int) DetectorOption {
	return func(d *Detector) {
		if n > 0 {
			d.stableSteps = n
		}
	}
}

// WithMaxScrollSteps caps the total scroll attempts per page.
func WithMaxScrollSteps(n int) DetectorOption {
	return func(d *Detector) {
		if n > 0 {
			d.maxSteps = n
		}
	}
}

// WithStepTimeout sets the post-scroll settle wait.
func WithStepTimeout(timeout time.Duration) DetectorOption {
	return func(d *Detector) {
		if timeout > 0 {
			d.stepTimeout = timeout
		}
	}
}

// WithDetectorLogger sets the logger for readiness diagnostics.
func WithDetectorLogger(logger *slog.Logger) DetectorOption {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a Detector with the documented defaults.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		stableSteps: DefaultStableSteps,
		maxSteps:    DefaultMaxScrollSteps,
		stepTimeout: DefaultStepTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Settle runs the readiness protocol on the session and returns the
// final snapshot with a stable/unstable verdict.
//
// A scroll attempt is made on every iteration, including the
// confirming no-change iterations: a page that grows for three steps
// with a threshold of two sees exactly five scroll attempts.
//
// Errors are returned only for genuine session failures outside the
// deadline. Deadline expiry at any point degrades to an unstable
// verdict carrying the last good snapshot.
func (d *Detector) Settle(ctx context.Context, session Session) (*Verdict, error) {
	markup, err := session.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("initial snapshot failed: %w", err)
	}
	prev := fingerprint(markup)

	unchanged := 0
	steps := 0

	for unchanged < d.stableSteps && steps < d.maxSteps {
		if ctx.Err() != nil {
			break
		}

		if err := session.ScrollStep(); err != nil {
			if ctx.Err() != nil {
				break
			}
			return nil, fmt.Errorf("scroll step %d failed: %w", steps+1, err)
		}
		steps++

		select {
		case <-ctx.Done():
		case <-time.After(d.stepTimeout):
		}
		if ctx.Err() != nil {
			break
		}

		current, err := session.Snapshot()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return nil, fmt.Errorf("snapshot after scroll step %d failed: %w", steps, err)
		}
		markup = current

		fp := fingerprint(current)
		if fp == prev {
			unchanged++
		} else {
			unchanged = 0
			prev = fp
		}
	}

	stable := unchanged >= d.stableSteps
	if !stable {
		d.logger.Debug("page did not stabilize, extracting best-effort snapshot",
			"scroll_steps", steps,
			"deadline_expired", ctx.Err() != nil,
		)
	}

	return &Verdict{Markup: markup, Stable: stable, ScrollSteps: steps}, nil
}

// fingerprint hashes a snapshot for cheap equality checks.
//
// Design decision: We compare hashes rather than raw snapshots because
// rendered markup for scroll-heavy pages runs to megabytes, and the
// detector keeps a fingerprint per step. SHA3-256 makes accidental
// collisions a non-concern.
func fingerprint(markup string) [32]byte {
	return sha3.Sum256([]byte(markup))
}
