package model

import "testing"

// TestBlockIsEmpty tests the empty-block suppression rules.
func TestBlockIsEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		block Block
		want  bool
	}{
		{name: "heading with text", block: Heading(2, "Title"), want: false},
		{name: "heading without text", block: Heading(2, ""), want: true},
		{name: "paragraph with text", block: Paragraph("hello"), want: false},
		{name: "paragraph without text", block: Paragraph(""), want: true},
		{name: "empty list item is preserved", block: ListItem(0, false, ""), want: false},
		{name: "table row with one cell", block: TableRow([]string{"", "x"}), want: false},
		{name: "table row with only empty cells", block: TableRow([]string{"", ""}), want: true},
		{name: "link with target", block: Link("", "https://example.com/a"), want: false},
		{name: "link without target", block: Link("text", ""), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.block.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestExportDocumentCounts tests the document aggregate helpers.
func TestExportDocumentCounts(t *testing.T) {
	t.Parallel()

	doc := &ExportDocument{
		Seed: "https://example.com/",
		Sections: []PageSection{
			{
				Index: 0,
				URL:   "https://example.com/",
				Title: "Home",
				Blocks: []Block{
					Heading(1, "Home"),
					Paragraph("Welcome"),
				},
			},
			{
				Index: 1,
				URL:   "https://example.com/broken",
				Title: "Broken",
				Err:   "navigation timeout",
			},
		},
	}

	if got := doc.PageCount(); got != 2 {
		t.Errorf("PageCount() = %d, want 2", got)
	}
	if got := doc.BlockCount(); got != 2 {
		t.Errorf("BlockCount() = %d, want 2", got)
	}

	failed := doc.FailedPages()
	if len(failed) != 1 || failed[0] != "https://example.com/broken" {
		t.Errorf("FailedPages() = %v, want [https://example.com/broken]", failed)
	}
}
