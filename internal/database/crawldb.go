package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sitedoc-dev/sitedoc/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl runs.
//
// Design decision: We use a single database file for all runs rather
// than one file per run. This keeps cross-run queries (was this page
// seen before, how did the site change) trivial, and simplifies
// backup/restore operations.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "sitedoc.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, and the crawl workers all write.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one row per crawl invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		pages INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages store one row per page visited during a run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		discovery_index INTEGER NOT NULL,
		depth INTEGER NOT NULL,
		title TEXT,
		stable INTEGER NOT NULL DEFAULT 0,
		block_count INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		crawled_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);

	-- Link edges store the discovered link graph of a run
	CREATE TABLE IF NOT EXISTS link_edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		from_url TEXT NOT NULL,
		to_url TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_edges_run ON link_edges(run_id);
	CREATE INDEX IF NOT EXISTS idx_edges_from ON link_edges(from_url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is a handle to one crawl run's rows. It satisfies the crawl
// package's Archive interface.
type Run struct {
	cdb *CrawlDB
	id  int64
}

// ID returns the run's database identifier.
func (r *Run) ID() int64 {
	return r.id
}

// CreateRun inserts a new run row and returns its handle.
func (cdb *CrawlDB) CreateRun(ctx context.Context, seed string) (*Run, error) {
	result, err := cdb.db.ExecContext(ctx, "INSERT INTO runs (seed) VALUES (?)", seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read run id: %w", err)
	}
	return &Run{cdb: cdb, id: id}, nil
}

// SavePage records one visited page.
// Uses UPSERT so a retried page overwrites its earlier row.
func (r *Run) SavePage(ctx context.Context, section *model.PageSection) error {
	query := `
	INSERT INTO pages (run_id, url, discovery_index, depth, title, stable, block_count, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, url) DO UPDATE SET
		discovery_index = excluded.discovery_index,
		depth = excluded.depth,
		title = excluded.title,
		stable = excluded.stable,
		block_count = excluded.block_count,
		error = excluded.error,
		crawled_at = CURRENT_TIMESTAMP
	`

	_, err := r.cdb.db.ExecContext(ctx, query,
		r.id,
		section.URL,
		section.Index,
		section.Depth,
		section.Title,
		section.Stable,
		len(section.Blocks),
		section.Err,
	)
	if err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	return nil
}

// SaveLinkEdges records the outbound link edges of one page.
func (r *Run) SaveLinkEdges(ctx context.Context, from string, to []string) error {
	if len(to) == 0 {
		return nil
	}

	tx, err := r.cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin edge transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, target := range to {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO link_edges (run_id, from_url, to_url) VALUES (?, ?, ?)",
			r.id, from, target,
		); err != nil {
			return fmt.Errorf("failed to save link edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link edges: %w", err)
	}
	return nil
}

// Finish stamps the run's end time and final page count.
func (r *Run) Finish(ctx context.Context, pages int) error {
	_, err := r.cdb.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = CURRENT_TIMESTAMP, pages = ? WHERE id = ?",
		pages, r.id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RunRecord is a stored run row.
type RunRecord struct {
	ID         int64
	Seed       string
	StartedAt  time.Time
	FinishedAt time.Time
	Pages      int
}

// ListRuns returns all stored runs, newest first.
func (cdb *CrawlDB) ListRuns(ctx context.Context) ([]RunRecord, error) {
	query := `
	SELECT id, seed, started_at, finished_at, pages
	FROM runs
	ORDER BY started_at DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started string
		var finished sql.NullString

		if err := rows.Scan(&rec.ID, &rec.Seed, &started, &finished, &rec.Pages); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.StartedAt = parseTimestamp(started)
		if finished.Valid {
			rec.FinishedAt = parseTimestamp(finished.String)
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// PageRecord is a stored page row.
type PageRecord struct {
	ID             int64
	RunID          int64
	URL            string
	DiscoveryIndex int
	Depth          int
	Title          string
	Stable         bool
	BlockCount     int
	Error          string
	CrawledAt      time.Time
}

// GetRunPages returns a run's pages in discovery order.
func (cdb *CrawlDB) GetRunPages(ctx context.Context, runID int64) ([]PageRecord, error) {
	query := `
	SELECT id, run_id, url, discovery_index, depth, title, stable, block_count, error, crawled_at
	FROM pages
	WHERE run_id = ?
	ORDER BY discovery_index
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close()

	var results []PageRecord
	for rows.Next() {
		var rec PageRecord
		var title, pageErr sql.NullString
		var crawled string

		if err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.URL,
			&rec.DiscoveryIndex,
			&rec.Depth,
			&title,
			&rec.Stable,
			&rec.BlockCount,
			&pageErr,
			&crawled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		rec.Title = title.String
		rec.Error = pageErr.String
		rec.CrawledAt = parseTimestamp(crawled)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// GetLinkEdges returns a run's link edges grouped by source URL.
func (cdb *CrawlDB) GetLinkEdges(ctx context.Context, runID int64) (map[string][]string, error) {
	query := `
	SELECT from_url, to_url FROM link_edges
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get link edges: %w", err)
	}
	defer rows.Close()

	edges := make(map[string][]string)
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan link edge: %w", err)
		}
		edges[from] = append(edges[from], to)
	}

	return edges, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
