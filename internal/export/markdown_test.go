package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sitedoc-dev/sitedoc/internal/model"
)

func sampleDocument() *model.ExportDocument {
	return &model.ExportDocument{
		Seed:        "http://example.com/",
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Sections: []model.PageSection{
			{
				Index:  0,
				URL:    "http://example.com/",
				Title:  "Home",
				Stable: true,
				Blocks: []model.Block{
					model.Heading(1, "Welcome"),
					model.Paragraph("An introduction paragraph."),
					model.ListItem(0, false, "first"),
					model.ListItem(0, false, "second"),
					model.ListItem(0, true, "step one"),
					model.ListItem(0, true, "step two"),
					model.TableRow([]string{"Name", "Value"}),
					model.TableRow([]string{"depth", "5"}),
					model.TableRow([]string{"ragged"}),
					model.Link("docs", "http://example.com/docs"),
				},
			},
			{
				Index: 1,
				URL:   "http://example.com/broken",
				Title: "Broken",
				Err:   "navigation timeout",
			},
		},
	}
}

func TestMarkdownSinkWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewMarkdownSink(&buf).Write(sampleDocument()); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	out := buf.String()

	wantFragments := []string{
		"# http://example.com/",
		"## Home",
		"# Welcome",
		"An introduction paragraph.",
		"- first",
		"- second",
		"1. step one",
		"2. step two",
		"Name",
		"depth",
		"ragged",
		"[docs](http://example.com/docs)",
		"## Broken",
		"> Page could not be rendered: navigation timeout",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(out, fragment) {
			t.Errorf("output missing %q\noutput:\n%s", fragment, out)
		}
	}

}

func TestMarkdownSinkNestedOrderedLists(t *testing.T) {
	t.Parallel()

	doc := &model.ExportDocument{
		Seed: "http://example.com/",
		Sections: []model.PageSection{
			{
				Index:  0,
				URL:    "http://example.com/",
				Title:  "Nesting",
				Stable: true,
				Blocks: []model.Block{
					model.ListItem(0, true, "outer one"),
					model.ListItem(1, true, "inner one"),
					model.ListItem(1, true, "inner two"),
					model.ListItem(0, true, "outer two"),
					model.ListItem(1, true, "restarted inner"),
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := NewMarkdownSink(&buf).Write(doc); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	out := buf.String()

	// Inner counters restart after returning to the outer level.
	wantLines := []string{
		"1. outer one",
		"  1. inner one",
		"  2. inner two",
		"2. outer two",
		"  1. restarted inner",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("output missing line %q\noutput:\n%s", line, out)
		}
	}
}

func TestMarkdownSinkChrome(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()
	doc.Header = []model.Block{model.Heading(1, "Acme Corp")}
	doc.Footer = []model.Block{model.Paragraph("All rights reserved.")}

	var buf bytes.Buffer
	if err := NewMarkdownSink(&buf).Write(doc); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	out := buf.String()

	headerAt := strings.Index(out, "## Site Header")
	firstSectionAt := strings.Index(out, "## Home")
	footerAt := strings.Index(out, "## Site Footer")
	if headerAt < 0 || footerAt < 0 {
		t.Fatalf("chrome sections missing\noutput:\n%s", out)
	}
	if !(headerAt < firstSectionAt && firstSectionAt < footerAt) {
		t.Errorf("chrome sections out of place: header=%d home=%d footer=%d", headerAt, firstSectionAt, footerAt)
	}
}

func TestMultiSink(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer
	sink := NewMultiSink(NewMarkdownSink(&first), NewMarkdownSink(&second))
	if err := sink.Write(sampleDocument()); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	if first.Len() == 0 || first.String() != second.String() {
		t.Error("multi sink should write identical output to every sink")
	}
}
