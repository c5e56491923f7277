// Package pagination splits a document into fixed-height pages by placing
// automatic page-break markers between top-level blocks.
package pagination

import (
	"errors"
	"fmt"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/layout"
)

// MetaKey is the transaction metadata key set on pagination transactions.
// Listeners skip repagination for transactions carrying MetaEnd.
const (
	MetaKey = "pagination"
	MetaEnd = "end"
)

// ErrMeasureUnavailable is returned when a block could not be measured.
// The document is left untouched and the next trigger retries.
var ErrMeasureUnavailable = errors.New("measurement unavailable")

// Options represents options for the pagination engine. All lengths are CSS
// pixels at 96 DPI.
type Options struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
	HeaderHeight float64
	FooterHeight float64

	// ContentHeightOverride replaces the derived content height when positive
	ContentHeightOverride float64
}

// DefaultOptions returns A4 with 2cm margins and room for the running
// header and footer: 642px of content width and 861px of content height.
func DefaultOptions() Options {
	return Options{
		PageWidth:    PageSizeA4.Width,
		PageHeight:   PageSizeA4.Height,
		MarginTop:    76,
		MarginRight:  76,
		MarginBottom: 76,
		MarginLeft:   76,
		HeaderHeight: 60,
		FooterHeight: 50,
	}
}

// ContentHeight is the vertical space available for blocks on one page
func (o Options) ContentHeight() float64 {
	if o.ContentHeightOverride > 0 {
		return o.ContentHeightOverride
	}
	return o.PageHeight - o.MarginTop - o.MarginBottom - o.HeaderHeight - o.FooterHeight
}

// ContentWidth is the width blocks are laid out in
func (o Options) ContentWidth() float64 {
	return o.PageWidth - o.MarginLeft - o.MarginRight
}

// Validate reports options that leave no room for content
func (o Options) Validate() error {
	if o.ContentHeight() <= 0 {
		return fmt.Errorf("pagination: content height %.1f must be positive", o.ContentHeight())
	}
	if o.ContentWidth() <= 0 {
		return fmt.Errorf("pagination: content width %.1f must be positive", o.ContentWidth())
	}
	return nil
}

// Engine handles the pagination process
type Engine struct {
	options  Options
	measurer layout.Measurer
}

// NewEngine creates a new pagination engine measuring blocks with m
func NewEngine(m layout.Measurer) *Engine {
	return &Engine{
		options:  DefaultOptions(),
		measurer: m,
	}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Options returns the engine options
func (e *Engine) Options() Options {
	return e.options
}

// Break is a page-break marker in the paginated document
type Break struct {
	Pos    int  `json:"pos"`
	Manual bool `json:"manual"`
}

// Result describes a pagination pass
type Result struct {
	// Pages is the total page count
	Pages int `json:"pages"`
	// Changed is set when a transaction was applied
	Changed bool `json:"changed"`
	// Skipped is set when there was no document to paginate
	Skipped bool `json:"skipped,omitempty"`
	// Breaks lists every marker of the resulting document
	Breaks []Break `json:"breaks"`
	// PageHeights is the measured content height of each page
	PageHeights []float64 `json:"page_heights"`
}

// Repaginate removes every automatic marker, measures each content block
// and inserts automatic markers where a block would overflow the page.
// Manual markers are kept and start a new page. All edits are applied in a
// single transaction, and none when the planned markers match the existing
// ones. On a measurement failure the document is not modified.
func (e *Engine) Repaginate(doc *document.Document) (Result, error) {
	if doc == nil {
		return Result{Skipped: true}, nil
	}

	plan, err := NewPaginator(e.options.ContentHeight(), e.measurer).Plan(doc)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Pages:       len(plan.Pages),
		Breaks:      plan.Breaks,
		PageHeights: make([]float64, len(plan.Pages)),
	}
	for i, p := range plan.Pages {
		result.PageHeights[i] = p.Height
	}

	if plan.Unchanged {
		return result, nil
	}

	tx := doc.Tx().SetMeta(MetaKey, MetaEnd)
	for _, m := range doc.Markers() {
		if !m.Manual {
			tx.Delete(m.Pos, m.Pos+1)
		}
	}
	for _, pos := range plan.Inserts {
		tx.Insert(pos, document.NewAutoBreak())
	}
	if err := tx.Apply(); err != nil {
		return Result{}, fmt.Errorf("apply pagination: %w", err)
	}
	result.Changed = true
	return result, nil
}
