package database

import (
	"context"
	"testing"

	"github.com/sitedoc-dev/sitedoc/internal/model"
)

func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := cdb.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return cdb
}

func TestOpenRequiresExistingDB(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.CreateIfNotExists = false
	if _, err := Open(t.TempDir(), opts); err == nil {
		t.Error("Open() should fail when the database does not exist")
	}
}

func TestRunSavePage(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	run, err := cdb.CreateRun(ctx, "http://example.com/")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	sections := []model.PageSection{
		{
			Index:  0,
			URL:    "http://example.com/",
			Title:  "Home",
			Stable: true,
			Blocks: []model.Block{model.Paragraph("hello")},
		},
		{
			Index: 1,
			URL:   "http://example.com/broken",
			Title: "Broken",
			Err:   "navigation timeout",
		},
	}
	for i := range sections {
		if err := run.SavePage(ctx, &sections[i]); err != nil {
			t.Fatalf("SavePage() failed: %v", err)
		}
	}

	pages, err := cdb.GetRunPages(ctx, run.ID())
	if err != nil {
		t.Fatalf("GetRunPages() failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].URL != "http://example.com/" || pages[0].BlockCount != 1 || !pages[0].Stable {
		t.Errorf("unexpected first page record: %+v", pages[0])
	}
	if pages[1].Error != "navigation timeout" {
		t.Errorf("second page error = %q, want the render failure", pages[1].Error)
	}
}

func TestRunSavePageUpsert(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	run, err := cdb.CreateRun(ctx, "http://example.com/")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	section := model.PageSection{Index: 0, URL: "http://example.com/", Title: "First"}
	if err := run.SavePage(ctx, &section); err != nil {
		t.Fatalf("SavePage() failed: %v", err)
	}
	section.Title = "Second"
	if err := run.SavePage(ctx, &section); err != nil {
		t.Fatalf("SavePage() retry failed: %v", err)
	}

	pages, err := cdb.GetRunPages(ctx, run.ID())
	if err != nil {
		t.Fatalf("GetRunPages() failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1 after upsert", len(pages))
	}
	if pages[0].Title != "Second" {
		t.Errorf("title = %q, want the updated value", pages[0].Title)
	}
}

func TestRunSaveLinkEdges(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	run, err := cdb.CreateRun(ctx, "http://example.com/")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	targets := []string{"http://example.com/a", "http://example.com/b"}
	if err := run.SaveLinkEdges(ctx, "http://example.com/", targets); err != nil {
		t.Fatalf("SaveLinkEdges() failed: %v", err)
	}
	if err := run.SaveLinkEdges(ctx, "http://example.com/a", nil); err != nil {
		t.Fatalf("SaveLinkEdges() with no targets failed: %v", err)
	}

	edges, err := cdb.GetLinkEdges(ctx, run.ID())
	if err != nil {
		t.Fatalf("GetLinkEdges() failed: %v", err)
	}
	got := edges["http://example.com/"]
	if len(got) != 2 || got[0] != targets[0] || got[1] != targets[1] {
		t.Errorf("edges from seed = %v, want %v", got, targets)
	}
}

func TestRunFinishAndList(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	run, err := cdb.CreateRun(ctx, "http://example.com/")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	if err := run.Finish(ctx, 7); err != nil {
		t.Fatalf("Finish() failed: %v", err)
	}

	runs, err := cdb.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Pages != 7 {
		t.Errorf("run pages = %d, want 7", runs[0].Pages)
	}
	if runs[0].FinishedAt.IsZero() {
		t.Error("finished run should carry a finish timestamp")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"sqlite default", "2026-08-01 12:34:56", false},
		{"rfc3339", "2026-08-01T12:34:56Z", false},
		{"garbage", "not a timestamp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v, zero expectation %v", tt.input, got, tt.zero)
			}
			if !tt.zero && got.Year() != 2026 {
				t.Errorf("parseTimestamp(%q) year = %d", tt.input, got.Year())
			}
		})
	}
}
