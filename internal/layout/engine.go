package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/parser/css"
	"github.com/gompdf/pagedit/internal/parser/html"
	"github.com/gompdf/pagedit/internal/res"
	"github.com/gompdf/pagedit/internal/style"
	xhtml "golang.org/x/net/html"
)

// Singleton PDF instance for text measurement using go-pdf/fpdf metrics
var (
	measureOnce sync.Once
	measurePDF  *fpdf.Fpdf
	measureTr   func(string) string
	measureMu   sync.Mutex
)

func initMeasurePDF() {
	measurePDF = fpdf.New("P", "pt", "A4", "")
	measurePDF.SetFont("Times", "", 12)
	measureTr = measurePDF.UnicodeTranslatorFromDescriptor("")
}

// textMeasure returns the rendered width of text in pixels
type textMeasure func(text string, st style.ComputedStyle) (float64, error)

// measureTextWidth returns a font-aware width using fpdf core font metrics.
// The font size is passed in pixels with the document unit set to points,
// so the returned width is in pixels as well.
func measureTextWidth(text string, st style.ComputedStyle) (float64, error) {
	if text == "" {
		return 0, nil
	}
	measureOnce.Do(initMeasurePDF)
	measureMu.Lock()
	defer measureMu.Unlock()
	if err := measurePDF.Error(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	fam, sty := resolveFontFromStyle(st)
	measurePDF.SetFont(fam, sty, st.FontSize())
	w := measurePDF.GetStringWidth(measureTr(text))
	if err := measurePDF.Error(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return w, nil
}

// resolveFontFromStyle maps CSS-like style to core PDF font family and style
func resolveFontFromStyle(st style.ComputedStyle) (string, string) {
	family := "Times"
	if ff := st.Get("font-family"); ff != "" {
		first := strings.Split(ff, ",")[0]
		first = strings.TrimSpace(strings.Trim(strings.TrimSpace(first), "'\""))
		switch strings.ToLower(first) {
		case "arial", "helvetica", "sans-serif":
			family = "Helvetica"
		case "times", "times new roman", "serif":
			family = "Times"
		case "courier", "courier new", "monospace":
			family = "Courier"
		}
	}
	styleStr := ""
	switch st.Get("font-weight") {
	case "bold", "bolder", "600", "700", "800", "900":
		styleStr += "B"
	}
	switch st.Get("font-style") {
	case "italic", "oblique":
		styleStr += "I"
	}
	return family, styleStr
}

// Options represents options for the layout engine
type Options struct {
	// Width is the content width in CSS pixels that blocks wrap into
	Width float64
	// Stylesheets are applied on top of the editor content styles
	Stylesheets []*css.Stylesheet
	// Loader resolves image sources for images without explicit size
	Loader *res.Loader
	// ImageTimeout bounds each intrinsic size lookup
	ImageTimeout time.Duration
}

// Engine measures document blocks off-screen. Each block is serialized to
// HTML, styled with the editor's content styles and laid out alone inside
// the content width.
type Engine struct {
	options Options
	styles  *style.StyleEngine
	measure textMeasure
}

// NewEngine creates a new layout engine
func NewEngine(options Options) *Engine {
	if options.ImageTimeout <= 0 {
		options.ImageTimeout = 10 * time.Second
	}
	e := &Engine{
		options: options,
		styles:  style.NewStyleEngine(),
		measure: measureTextWidth,
	}
	for _, sheet := range options.Stylesheets {
		e.styles.AddStylesheet(sheet)
	}
	return e
}

// Measure returns the outer height of node in pixels, vertical margins
// included.
func (e *Engine) Measure(node *document.Node) (float64, error) {
	if node == nil {
		return 0, nil
	}
	if e.options.Width <= 0 {
		return 0, fmt.Errorf("%w: no content width", ErrUnavailable)
	}

	el := html.FromBlock(node)
	body := html.NewElement("body")
	body.AppendChild(el)

	box := e.Layout(body)
	if err := box.Layout(e.options.Width); err != nil {
		return 0, err
	}
	if len(box.Children) == 0 {
		return 0, nil
	}
	// the body itself has no margins, so the child's collapsed margins
	// surface on the body box
	return OuterHeight(box), nil
}

// Layout builds the box tree for root without laying it out
func (e *Engine) Layout(root *html.Node) *BlockBox {
	styles := e.styles.ComputeStyles(root)
	return e.buildBlock(root, styles)
}

func (e *Engine) buildBlock(n *html.Node, styles map[*html.Node]style.ComputedStyle) *BlockBox {
	b := NewBlockBox(n, styles[n])

	var runs []inlineRun
	flush := func() {
		if len(runs) > 0 {
			b.AddChild(&LineBox{Style: b.Style, Runs: runs, measure: e.measure})
			runs = nil
		}
	}

	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == xhtml.ElementNode && isBlockTag(ch.Data) {
			flush()
			switch strings.ToLower(ch.Data) {
			case "img":
				b.AddChild(&ImageBox{Node: ch, Style: styles[ch], intrinsic: e.intrinsicSize})
			default:
				b.AddChild(e.buildBlock(ch, styles))
			}
			continue
		}
		collectInlineRuns(ch, styles, b.Style, &runs)
	}
	flush()

	// textblocks keep one line of height when empty, as in the editor
	if len(b.Children) == 0 && isTextblockTag(n.Data) {
		b.AddChild(&LineBox{Style: b.Style, measure: e.measure})
	}
	return b
}

func (e *Engine) intrinsicSize(src string) (float64, float64, bool) {
	if e.options.Loader == nil {
		return 0, 0, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.options.ImageTimeout)
	defer cancel()
	w, h, err := e.options.Loader.ImageSize(ctx, src)
	if err != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return float64(w), float64(h), true
}

func isTextblockTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "pre":
		return true
	}
	return false
}

// ErrUnavailable is returned when a block cannot be measured
var ErrUnavailable = errors.New("layout unavailable")
