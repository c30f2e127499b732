package crawl

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sitedoc-dev/sitedoc/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Assembler buffers completed page sections keyed by discovery index
// and emits the final export document in strict discovery order once
// the crawl is done. Buffering is what makes the output reproducible
// across runs with parallel rendering: completion order varies,
// discovery order does not.
type Assembler struct {
	mu       sync.Mutex
	seed     string
	sections map[int]model.PageSection
	header   []model.Block
	footer   []model.Block
}

// NewAssembler creates an Assembler for a crawl starting at seed.
func NewAssembler(seed string) *Assembler {
	return &Assembler{
		seed:     seed,
		sections: make(map[int]model.PageSection),
	}
}

// Complete records one page's finished section. Safe for concurrent
// use by workers.
func (a *Assembler) Complete(section model.PageSection) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sections[section.Index] = section
}

// SetChrome records the site chrome captured from the first rendered
// page.
func (a *Assembler) SetChrome(header, footer []model.Block) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.header = header
	a.footer = footer
}

// Document emits the export document: every completed section in
// discovery order, each guaranteed a non-empty heading label. Call it
// only after the controller reached its terminal state.
func (a *Assembler) Document() *model.ExportDocument {
	a.mu.Lock()
	defer a.mu.Unlock()

	indexes := make([]int, 0, len(a.sections))
	for i := range a.sections {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	doc := &model.ExportDocument{
		Seed:        a.seed,
		GeneratedAt: time.Now(),
		Header:      a.header,
		Footer:      a.footer,
		Sections:    make([]model.PageSection, 0, len(indexes)),
	}

	titleCaser := cases.Title(language.English)
	for _, i := range indexes {
		section := a.sections[i]
		if section.Title == "" {
			section.Title = headingLabel(section.URL, titleCaser)
		}
		doc.Sections = append(doc.Sections, section)
	}

	return doc
}

// headingLabel derives a section heading for a page without a title:
// the last URL path segment, de-slugged and title-cased, falling back
// to the URL itself for root pages.
func headingLabel(pageURL string, caser cases.Caser) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	slug := segments[len(segments)-1]
	if slug == "" {
		return pageURL
	}

	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	// Drop a file extension if the slug looks like one ("intro.html").
	if dot := strings.LastIndex(slug, "."); dot > 0 {
		slug = slug[:dot]
	}

	label := caser.String(strings.TrimSpace(slug))
	if label == "" {
		return pageURL
	}
	return label
}
