package model

// BlockKind identifies the type of a structural block.
//
// Design decision: We use a string type rather than iota constants
// because blocks are persisted to the crawl database and may appear in
// logs; a self-describing value is worth more than the few bytes saved
// by an integer.
type BlockKind string

// Block kinds emitted by the structure extractor.
const (
	// KindHeading is a heading element. Level carries the heading rank
	// (1 = most significant, 6 = least).
	KindHeading BlockKind = "heading"

	// KindParagraph is a block-level text container (paragraph,
	// blockquote, preformatted text).
	KindParagraph BlockKind = "paragraph"

	// KindListItem is a single list item. Depth carries the list
	// nesting depth (0 = top-level list) and Ordered distinguishes
	// numbered from bulleted lists.
	KindListItem BlockKind = "list_item"

	// KindTableRow is a single table row. Cells carries the cell texts
	// in column order.
	KindTableRow BlockKind = "table_row"

	// KindLink is an anchor element. Target carries the resolved
	// absolute URL.
	KindLink BlockKind = "link"
)

// Block is one typed unit of extracted page content.
// Blocks within a page are ordered in document order: the order they
// appear in the rendered markup, top to bottom.
//
// Design decision: We model blocks as a single struct with a Kind tag
// rather than an interface with one type per kind. The extractor, the
// assembler, and every sink switch over the kind anyway, and a flat
// struct serializes cleanly to the database and to JSON.
type Block struct {
	// Kind identifies which fields below are meaningful.
	Kind BlockKind `json:"kind"`

	// Text is the block's text content. Inline elements inside one
	// block-level container are concatenated with single spaces and
	// trimmed. Used by headings, paragraphs, list items, and links
	// (where it is the anchor text).
	Text string `json:"text,omitempty"`

	// Level is the heading rank (1..6). Only set for KindHeading.
	Level int `json:"level,omitempty"`

	// Depth is the list nesting depth (0 = top-level list).
	// Only set for KindListItem.
	Depth int `json:"depth,omitempty"`

	// Ordered reports whether the list item came from a numbered list.
	// Only set for KindListItem.
	Ordered bool `json:"ordered,omitempty"`

	// Cells are the row's cell texts in column order.
	// Only set for KindTableRow.
	Cells []string `json:"cells,omitempty"`

	// Target is the resolved absolute URL of an anchor.
	// Only set for KindLink.
	Target string `json:"target,omitempty"`
}

// Heading creates a heading block with the given rank and text.
func Heading(level int, text string) Block {
	return Block{Kind: KindHeading, Level: level, Text: text}
}

// Paragraph creates a paragraph block.
func Paragraph(text string) Block {
	return Block{Kind: KindParagraph, Text: text}
}

// ListItem creates a list item block at the given nesting depth.
func ListItem(depth int, ordered bool, text string) Block {
	return Block{Kind: KindListItem, Depth: depth, Ordered: ordered, Text: text}
}

// TableRow creates a table row block from the given cells.
func TableRow(cells []string) Block {
	return Block{Kind: KindTableRow, Cells: cells}
}

// Link creates a link block with the anchor text and resolved target.
func Link(text, target string) Block {
	return Block{Kind: KindLink, Text: text, Target: target}
}

// IsEmpty reports whether the block carries no content worth keeping.
// Empty list items are never considered empty: they are preserved so
// that list numbering in the final document stays faithful to the page.
func (b Block) IsEmpty() bool {
	switch b.Kind {
	case KindListItem:
		return false
	case KindTableRow:
		for _, c := range b.Cells {
			if c != "" {
				return false
			}
		}
		return true
	case KindLink:
		return b.Target == ""
	default:
		return b.Text == ""
	}
}
