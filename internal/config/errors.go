package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoSeed is returned when no seed URL is specified.
	ErrNoSeed = errors.New("no seed URL specified: provide the site's start page as an argument")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	// A timeout of zero or negative would cause immediate page failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no crawling at all.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidStableSteps is returned when the readiness stability
	// threshold is not positive. At least one unchanged fingerprint is
	// needed to ever declare a page stable.
	ErrInvalidStableSteps = errors.New("invalid stable steps: must be positive")

	// ErrInvalidScrollSteps is returned when the scroll-step cap is not
	// positive. Without a cap, an ever-growing feed would scroll forever.
	ErrInvalidScrollSteps = errors.New("invalid max scroll steps: must be positive")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	// Depth 0 means crawl only the seed page.
	ErrInvalidDepth = errors.New("invalid crawl depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page ceiling is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidFormat is returned when the output format is not one of
	// docx, markdown, or both.
	ErrInvalidFormat = errors.New("invalid output format: must be docx, markdown, or both")
)
