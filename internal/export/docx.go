package export

import (
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/sitedoc-dev/sitedoc/internal/model"
)

// maxWordHeadingLevel caps heading styles: Word ships Heading 1-9 but
// anything past 4 renders indistinguishably from body text in the
// default theme.
const maxWordHeadingLevel = 4

// DocxSink renders the document as a Word (.docx) file. This is the
// primary output format: the point of the crawl is a document a
// non-technical reader can open.
type DocxSink struct {
	path string
}

// NewDocxSink creates a DocxSink that saves to path.
func NewDocxSink(path string) *DocxSink {
	return &DocxSink{path: path}
}

// Write builds the Word document and saves it to the configured path.
func (s *DocxSink) Write(doc *model.ExportDocument) error {
	word, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create word document: %w", err)
	}

	if _, err := word.AddHeading(doc.Seed, 0); err != nil {
		return fmt.Errorf("failed to write document title: %w", err)
	}
	word.AddParagraph(fmt.Sprintf("Generated %s from %d page(s).",
		doc.GeneratedAt.Format("2006-01-02 15:04"), doc.PageCount()))

	if len(doc.Header) > 0 {
		if err := s.writeChrome(word, "Site Header", doc.Header); err != nil {
			return err
		}
	}

	for i := range doc.Sections {
		if err := s.writeSection(word, &doc.Sections[i]); err != nil {
			return err
		}
	}

	if len(doc.Footer) > 0 {
		if err := s.writeChrome(word, "Site Footer", doc.Footer); err != nil {
			return err
		}
	}

	if err := word.SaveTo(s.path); err != nil {
		return fmt.Errorf("failed to save word document to %s: %w", s.path, err)
	}
	return nil
}

// writeChrome writes a captured header or footer as its own section.
func (s *DocxSink) writeChrome(word *docx.RootDoc, title string, blocks []model.Block) error {
	if _, err := word.AddHeading(title, 1); err != nil {
		return fmt.Errorf("failed to write %s heading: %w", strings.ToLower(title), err)
	}
	if err := s.writeBlocks(word, blocks); err != nil {
		return err
	}
	word.AddPageBreak()
	return nil
}

// writeSection writes one page section followed by a page break, so
// every crawled page starts on a fresh page like the original site's
// navigation would suggest.
func (s *DocxSink) writeSection(word *docx.RootDoc, section *model.PageSection) error {
	if _, err := word.AddHeading(section.Title, 1); err != nil {
		return fmt.Errorf("failed to write section heading for %s: %w", section.URL, err)
	}
	word.AddParagraph("Source: " + section.URL)

	switch {
	case section.Failed():
		word.AddParagraph("Page could not be rendered: " + section.Err)
	case !section.Stable:
		word.AddParagraph("Page did not stabilize; content is a best-effort snapshot.")
		fallthrough
	default:
		if err := s.writeBlocks(word, section.Blocks); err != nil {
			return err
		}
	}

	word.AddPageBreak()
	return nil
}

// writeBlocks renders a block sequence. Consecutive table rows form
// one table; list items become indented bullet or numbered paragraphs.
func (s *DocxSink) writeBlocks(word *docx.RootDoc, blocks []model.Block) error {
	ordinals := make(map[int]int)

	for i := 0; i < len(blocks); i++ {
		b := blocks[i]

		if b.Kind != model.KindListItem {
			clear(ordinals)
		}

		switch b.Kind {
		case model.KindHeading:
			// Page headings shift one level down under the section
			// heading and cap at the deepest usable Word style.
			level := b.Level + 1
			if level > maxWordHeadingLevel {
				level = maxWordHeadingLevel
			}
			if _, err := word.AddHeading(b.Text, uint(level)); err != nil {
				return fmt.Errorf("failed to write heading %q: %w", b.Text, err)
			}
		case model.KindParagraph:
			word.AddParagraph(b.Text)
		case model.KindListItem:
			word.AddParagraph(wordListLine(b, ordinals))
		case model.KindTableRow:
			end := i
			for end < len(blocks) && blocks[end].Kind == model.KindTableRow {
				end++
			}
			s.writeTable(word, blocks[i:end])
			i = end - 1
		case model.KindLink:
			label := b.Text
			if label == "" {
				label = b.Target
			}
			word.AddParagraph(label + " (" + b.Target + ")")
		}
	}
	return nil
}

// wordListLine renders one list item as an indented paragraph. Word
// list styling is not wired up, so bullet and number texture is
// carried in the text itself.
func wordListLine(b model.Block, ordinals map[int]int) string {
	for depth := range ordinals {
		if depth > b.Depth {
			delete(ordinals, depth)
		}
	}

	indent := strings.Repeat("    ", b.Depth)
	if b.Ordered {
		ordinals[b.Depth]++
		return fmt.Sprintf("%s%d. %s", indent, ordinals[b.Depth], b.Text)
	}
	delete(ordinals, b.Depth)
	return indent + "• " + b.Text
}

// writeTable renders a run of table-row blocks as one Word table with
// ragged rows padded to the widest row.
func (s *DocxSink) writeTable(word *docx.RootDoc, rows []model.Block) {
	width := 0
	for _, r := range rows {
		if len(r.Cells) > width {
			width = len(r.Cells)
		}
	}
	if width == 0 {
		return
	}

	table := word.AddTable()
	table.Style("LightList-Accent1")
	for _, r := range rows {
		row := table.AddRow()
		for c := 0; c < width; c++ {
			cell := row.AddCell()
			if c < len(r.Cells) {
				cell.AddParagraph(r.Cells[c])
			} else {
				cell.AddParagraph("")
			}
		}
	}
}
