package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sitedoc-dev/sitedoc/internal/model"
)

func TestDocxSinkWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "site.docx")
	if err := NewDocxSink(path).Write(sampleDocument()); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("document was not saved: %v", err)
	}
	if info.Size() == 0 {
		t.Error("saved document is empty")
	}
}

func TestDocxSinkBadPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "nested", "site.docx")
	if err := NewDocxSink(path).Write(sampleDocument()); err == nil {
		t.Error("Write() should fail when the output directory does not exist")
	}
}

func TestWordListLine(t *testing.T) {
	t.Parallel()

	ordinals := make(map[int]int)

	tests := []struct {
		name  string
		depth int
		order bool
		text  string
		want  string
	}{
		{"top bullet", 0, false, "alpha", "• alpha"},
		{"ordered one", 0, true, "first", "1. first"},
		{"ordered two", 0, true, "second", "2. second"},
		{"nested ordered", 1, true, "inner", "    1. inner"},
		{"outer resets inner", 0, true, "third", "3. third"},
		{"inner restarts", 1, true, "again", "    1. again"},
	}

	for _, tt := range tests {
		got := wordListLine(model.ListItem(tt.depth, tt.order, tt.text), ordinals)
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}
