package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/sitedoc-dev/sitedoc/internal/model"
)

// MarkdownSink renders the document as GitHub-flavored Markdown.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. A single Build() error check instead of per-write checks
type MarkdownSink struct {
	output io.Writer
}

// NewMarkdownSink creates a MarkdownSink that writes to output.
func NewMarkdownSink(output io.Writer) *MarkdownSink {
	return &MarkdownSink{output: output}
}

// Write renders the whole document and flushes it to the output.
func (s *MarkdownSink) Write(doc *model.ExportDocument) error {
	md := markdown.NewMarkdown(s.output)

	s.writeFrontMatter(md, doc)

	if len(doc.Header) > 0 {
		md.H2("Site Header")
		md.PlainText("")
		writeBlocks(md, doc.Header)
	}

	for i := range doc.Sections {
		s.writeSection(md, &doc.Sections[i])
	}

	if len(doc.Footer) > 0 {
		md.H2("Site Footer")
		md.PlainText("")
		writeBlocks(md, doc.Footer)
	}

	return md.Build()
}

// writeFrontMatter writes the document title and the crawl facts table.
func (s *MarkdownSink) writeFrontMatter(md *markdown.Markdown, doc *model.ExportDocument) {
	md.H1(doc.Seed)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + doc.Seed + "`"},
			{"Generated", doc.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages", strconv.Itoa(doc.PageCount())},
			{"Blocks", strconv.Itoa(doc.BlockCount())},
			{"Failed pages", strconv.Itoa(len(doc.FailedPages()))},
		},
	})
	md.PlainText("")
}

// writeSection writes one page section: its heading, source line, and
// block sequence.
func (s *MarkdownSink) writeSection(md *markdown.Markdown, section *model.PageSection) {
	md.H2(section.Title)
	md.PlainText("")
	md.PlainTextf("*Source: <%s>*", section.URL)
	md.PlainText("")

	if section.Failed() {
		md.PlainTextf("> Page could not be rendered: %s", section.Err)
		md.PlainText("")
		return
	}
	if !section.Stable {
		md.PlainText("> Page did not stabilize; content is a best-effort snapshot.")
		md.PlainText("")
	}

	writeBlocks(md, section.Blocks)
}

// writeBlocks renders a block sequence in order. Consecutive table
// rows form one table; ordered list items are numbered per depth.
func writeBlocks(md *markdown.Markdown, blocks []model.Block) {
	ordinals := make(map[int]int)

	for i := 0; i < len(blocks); i++ {
		b := blocks[i]

		if b.Kind != model.KindListItem {
			clear(ordinals)
		}

		switch b.Kind {
		case model.KindHeading:
			writeHeading(md, b)
			md.PlainText("")
		case model.KindParagraph:
			md.PlainText(b.Text)
			md.PlainText("")
		case model.KindListItem:
			md.PlainText(listItemLine(b, ordinals))
			// Close the list once the run ends.
			if i+1 == len(blocks) || blocks[i+1].Kind != model.KindListItem {
				md.PlainText("")
			}
		case model.KindTableRow:
			end := i
			for end < len(blocks) && blocks[end].Kind == model.KindTableRow {
				end++
			}
			writeTable(md, blocks[i:end])
			md.PlainText("")
			i = end - 1
		case model.KindLink:
			label := b.Text
			if label == "" {
				label = b.Target
			}
			md.PlainTextf("[%s](%s)", label, b.Target)
			md.PlainText("")
		}
	}
}

// writeHeading carries the page's heading level verbatim.
func writeHeading(md *markdown.Markdown, b model.Block) {
	switch b.Level {
	case 1:
		md.H1(b.Text)
	case 2:
		md.H2(b.Text)
	case 3:
		md.H3(b.Text)
	case 4:
		md.H4(b.Text)
	case 5:
		md.H5(b.Text)
	default:
		md.H6(b.Text)
	}
}

// listItemLine renders one list item with nesting indentation. Ordered
// items are numbered by counting the run at each depth; deeper
// counters reset whenever a shallower item appears.
func listItemLine(b model.Block, ordinals map[int]int) string {
	for depth := range ordinals {
		if depth > b.Depth {
			delete(ordinals, depth)
		}
	}

	indent := strings.Repeat("  ", b.Depth)
	if b.Ordered {
		ordinals[b.Depth]++
		return fmt.Sprintf("%s%d. %s", indent, ordinals[b.Depth], b.Text)
	}
	delete(ordinals, b.Depth)
	return indent + "- " + b.Text
}

// writeTable renders a run of table-row blocks as one table. Markdown
// tables require a header row and uniform width, so the first row
// becomes the header and ragged rows are padded to the widest row.
func writeTable(md *markdown.Markdown, rows []model.Block) {
	width := 0
	for _, r := range rows {
		if len(r.Cells) > width {
			width = len(r.Cells)
		}
	}
	if width == 0 {
		return
	}

	padded := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, width)
		copy(cells, r.Cells)
		padded[i] = cells
	}

	md.Table(markdown.TableSet{
		Header: padded[0],
		Rows:   padded[1:],
	})
}
