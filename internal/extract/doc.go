// Package extract maps a rendered markup snapshot to an ordered
// sequence of typed structural blocks plus the outbound links that are
// candidates for further crawling.
//
// The mapping preserves document order and heading hierarchy:
//
//   - h1..h6 become heading blocks carrying their source rank verbatim
//   - p, blockquote, and pre become paragraph blocks
//   - ul/ol become list item blocks with their nesting depth
//   - table rows become table row blocks, cell by cell
//   - anchors become link blocks with resolved absolute targets
//
// Unknown element types are descended into rather than failing, so a
// page built entirely out of divs still yields its headings and
// paragraphs.
//
// Links found inside configured exclusion containers (navigation bars
// and similar boilerplate) are kept as link blocks for display but are
// never returned as crawl candidates.
package extract
