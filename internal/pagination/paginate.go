package pagination

import (
	"fmt"
	"strings"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/layout"
)

// PageSize represents standard page sizes
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// Standard page sizes in CSS pixels (1/96 inch)
var (
	PageSizeA4     = PageSize{Width: 794, Height: 1123, Name: "A4"}
	PageSizeLetter = PageSize{Width: 816, Height: 1056, Name: "Letter"}
	PageSizeLegal  = PageSize{Width: 816, Height: 1344, Name: "Legal"}
	PageSizeA3     = PageSize{Width: 1123, Height: 1587, Name: "A3"}
	PageSizeA5     = PageSize{Width: 559, Height: 794, Name: "A5"}
)

// PageSizeByName looks up a standard page size, ignoring case
func PageSizeByName(name string) (PageSize, bool) {
	for _, s := range []PageSize{PageSizeA4, PageSizeLetter, PageSizeLegal, PageSizeA3, PageSizeA5} {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return PageSize{}, false
}

// Page is one page of a pagination plan
type Page struct {
	Number int
	// Start is the position of the page's first block in the paginated document
	Start  int
	Blocks int
	Height float64
}

// Plan is the outcome of distributing a document's blocks onto pages
type Plan struct {
	Pages []Page
	// Breaks are the markers of the paginated document
	Breaks []Break
	// Inserts are the positions in the current document that get a new
	// automatic marker once the existing automatic markers are removed
	Inserts []int
	// Unchanged is set when the plan reproduces the current markers exactly
	Unchanged bool
}

// Paginator handles breaking content into pages
type Paginator struct {
	ContentHeight float64
	Measurer      layout.Measurer
}

// NewPaginator creates a new paginator
func NewPaginator(contentHeight float64, m layout.Measurer) *Paginator {
	return &Paginator{ContentHeight: contentHeight, Measurer: m}
}

// Plan measures every content block of doc and decides where automatic
// markers go. Existing automatic markers are ignored; a manual marker
// always starts a new page. A block starts a new page when it would
// overflow a page that already holds content, so a block taller than a
// page sits alone on its page. Every block is measured before any result
// is produced and doc is never modified.
func (p *Paginator) Plan(doc *document.Document) (*Plan, error) {
	if p.Measurer == nil {
		return nil, fmt.Errorf("%w: no measurer", ErrMeasureUnavailable)
	}

	plan := &Plan{}
	// result holds the paginated block sequence; nil stands for a new
	// automatic marker
	var result []*document.Node

	page := Page{Number: 1}
	acc := 0.0
	closePage := func() {
		page.Height = acc
		plan.Pages = append(plan.Pages, page)
		page = Page{Number: page.Number + 1}
		acc = 0
	}

	var err error
	doc.ForEach(func(n *document.Node, pos int) bool {
		if n.IsAutoBreak() {
			return true
		}
		if n.IsManualBreak() {
			result = append(result, n)
			closePage()
			return true
		}

		var h float64
		h, err = p.Measurer.Measure(n)
		if err != nil {
			err = fmt.Errorf("%w: block at %d: %w", ErrMeasureUnavailable, pos, err)
			return false
		}

		if acc+h > p.ContentHeight && acc > 0 {
			plan.Inserts = append(plan.Inserts, pos)
			result = append(result, nil)
			closePage()
		}
		acc += h
		page.Blocks++
		result = append(result, n)
		return true
	})
	if err != nil {
		return nil, err
	}
	page.Height = acc
	plan.Pages = append(plan.Pages, page)

	plan.Unchanged = sameSequence(doc, result)
	plan.Breaks, plan.Pages = resolvePositions(result, plan.Pages)
	return plan, nil
}

// sameSequence reports whether doc already matches the paginated sequence,
// counting any automatic marker as equal to a planned one.
func sameSequence(doc *document.Document, result []*document.Node) bool {
	if doc.Len() != len(result) {
		return false
	}
	for i, want := range result {
		have := doc.Block(i)
		if want == nil {
			if !have.IsAutoBreak() {
				return false
			}
			continue
		}
		if have != want {
			return false
		}
	}
	return true
}

// resolvePositions computes marker positions and page starts in the
// paginated document.
func resolvePositions(result []*document.Node, pages []Page) ([]Break, []Page) {
	var breaks []Break
	pos := 0
	pageIdx := 0
	for _, n := range result {
		if n == nil || n.IsPageBreak() {
			breaks = append(breaks, Break{Pos: pos, Manual: n != nil})
			pos++
			pageIdx++
			if pageIdx < len(pages) {
				pages[pageIdx].Start = pos
			}
			continue
		}
		pos += n.Size()
	}
	return breaks, pages
}
