// Package pdf prints documents to PDF with the same page geometry the
// pagination engine uses. Every page-break marker starts a new page; a page
// that overflows continues on the next one.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/pagination"
	"github.com/gompdf/pagedit/internal/parser/html"
	"github.com/gompdf/pagedit/internal/res"
	"github.com/gompdf/pagedit/internal/style"
	"github.com/gompdf/pagedit/internal/text"
	xhtml "golang.org/x/net/html"
)

// pxToPt converts CSS pixels at 96 DPI to PDF points
const pxToPt = 72.0 / 96.0

// ErrNothingToRender is returned for documents without content
var ErrNothingToRender = errors.New("nothing to render")

// Renderer handles rendering to PDF
type Renderer struct {
	// Layout is the page geometry in CSS pixels
	Layout pagination.Options
	// Loader resolves image sources; images are skipped without one
	Loader *res.Loader
	// ImageTimeout bounds each image load
	ImageTimeout time.Duration
	// Logger receives debug output
	Logger *slog.Logger

	styles *style.StyleEngine
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title      string
	Author     string
	Subject    string
	Keywords   string
	Creator    string
	HeaderText string
}

// NewRenderer creates a new PDF renderer for the default A4 geometry
func NewRenderer() *Renderer {
	return &Renderer{
		Layout:       pagination.DefaultOptions(),
		ImageTimeout: 10 * time.Second,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		styles:       style.NewStyleEngine(),
	}
}

// RenderFile renders doc to a PDF file, creating its directory if needed
func (r *Renderer) RenderFile(doc *document.Document, outputPath string, options RenderOptions) error {
	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := r.Render(doc, &buf, options); err != nil {
		return err
	}
	return os.WriteFile(outputPath, buf.Bytes(), 0644)
}

// Render writes doc as PDF to w
func (r *Renderer) Render(doc *document.Document, w io.Writer, options RenderOptions) error {
	if doc == nil || doc.IsEmpty() {
		return ErrNothingToRender
	}
	if err := r.Layout.Validate(); err != nil {
		return err
	}
	if r.styles == nil {
		r.styles = style.NewStyleEngine()
	}

	g := r.Layout
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.PageWidth * pxToPt, Ht: g.PageHeight * pxToPt},
	})
	pdf.SetMargins(g.MarginLeft*pxToPt, (g.MarginTop+g.HeaderHeight)*pxToPt, g.MarginRight*pxToPt)
	pdf.SetAutoPageBreak(false, (g.MarginBottom+g.FooterHeight)*pxToPt)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.AliasNbPages("")

	wr := &writer{
		r:   r,
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	wr.setHeaderFooter(options.HeaderText)

	pdf.AddPage()
	wr.y = wr.top()
	for _, block := range doc.Blocks() {
		if block.IsPageBreak() {
			pdf.AddPage()
			wr.y = wr.top()
			wr.pendingMargin = 0
			continue
		}
		wr.renderBlock(block)
	}
	r.Logger.Debug("pdf rendered", "pages", pdf.PageNo(), "blocks", doc.Len())

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// writer holds the state of one rendering pass. Positions are in points.
type writer struct {
	r   *Renderer
	pdf *fpdf.Fpdf
	tr  func(string) string

	y             float64
	pendingMargin float64
	images        int
}

func (w *writer) top() float64 {
	return (w.r.Layout.MarginTop + w.r.Layout.HeaderHeight) * pxToPt
}

func (w *writer) bottom() float64 {
	g := w.r.Layout
	return (g.PageHeight - g.MarginBottom - g.FooterHeight) * pxToPt
}

func (w *writer) left() float64 {
	return w.r.Layout.MarginLeft * pxToPt
}

func (w *writer) contentWidth() float64 {
	return w.r.Layout.ContentWidth() * pxToPt
}

// setHeaderFooter draws the running header and the "Page N of M" footer
func (w *writer) setHeaderFooter(header string) {
	g := w.r.Layout
	gray := parseColor("#666")
	rule := parseColor("#ddd")
	x := w.left()
	width := w.contentWidth()

	w.pdf.SetHeaderFunc(func() {
		if header == "" {
			return
		}
		w.pdf.SetFont("Helvetica", "", 10)
		w.pdf.SetTextColor(gray[0], gray[1], gray[2])
		lineY := (g.MarginTop + g.HeaderHeight*0.6) * pxToPt
		w.pdf.SetXY(x, lineY-14)
		w.pdf.CellFormat(width, 12, w.tr(header), "", 0, "C", false, 0, "")
		w.pdf.SetDrawColor(rule[0], rule[1], rule[2])
		w.pdf.SetLineWidth(0.75)
		w.pdf.Line(x, lineY, x+width, lineY)
	})
	w.pdf.SetFooterFunc(func() {
		w.pdf.SetFont("Helvetica", "", 10)
		w.pdf.SetTextColor(gray[0], gray[1], gray[2])
		lineY := (g.PageHeight - g.MarginBottom - g.FooterHeight*0.6) * pxToPt
		w.pdf.SetDrawColor(rule[0], rule[1], rule[2])
		w.pdf.SetLineWidth(0.75)
		w.pdf.Line(x, lineY, x+width, lineY)
		w.pdf.SetXY(x, lineY+4)
		label := fmt.Sprintf("Page %d of {nb}", w.pdf.PageNo())
		w.pdf.CellFormat(width, 12, label, "", 0, "C", false, 0, "")
	})
}

// renderBlock styles a top-level block the way the editor does and draws it
func (w *writer) renderBlock(block *document.Node) {
	body := html.NewElement("body")
	body.AppendChild(html.FromBlock(block))
	styles := w.r.styles.ComputeStyles(body)
	for ch := body.FirstChild; ch != nil; ch = ch.NextSibling {
		w.renderElement(ch, styles, w.left(), w.contentWidth(), "")
	}
}

// renderElement draws el at x inside width. marker is the list marker of an
// enclosing list item, drawn next to the first line.
func (w *writer) renderElement(el *html.Node, styles map[*html.Node]style.ComputedStyle, x, width float64, marker string) {
	if el.Type != xhtml.ElementNode {
		return
	}
	st := styles[el]
	mt, _, mb, _ := st.Box("margin", width/pxToPt)
	pt, _, pb, pl := st.Box("padding", width/pxToPt)
	w.advanceMargin(mt * pxToPt)

	tag := strings.ToLower(el.Data)
	switch tag {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6":
		w.renderInline(el, styles, st, x, width, marker)
	case "pre":
		w.y += pt * pxToPt
		w.renderPre(el, st, x+pl*pxToPt)
		w.y += pb * pxToPt
	case "ul", "ol":
		counter := 1
		if start, ok := el.GetAttr("start"); ok {
			if n, err := strconv.Atoi(start); err == nil {
				counter = n
			}
		}
		inner := x + pl*pxToPt
		for ch := el.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != xhtml.ElementNode {
				continue
			}
			m := "•"
			if tag == "ol" {
				m = strconv.Itoa(counter) + "."
				counter++
			}
			w.renderElement(ch, styles, inner, width-pl*pxToPt, m)
		}
	case "li", "blockquote", "div":
		startY, startPage := w.y, w.pdf.PageNo()
		inner := x + pl*pxToPt
		for ch := el.FirstChild; ch != nil; ch = ch.NextSibling {
			w.renderElement(ch, styles, inner, width-pl*pxToPt, marker)
			marker = ""
		}
		if tag == "blockquote" && w.pdf.PageNo() == startPage {
			_, _, _, bl := st.BorderWidths()
			c := parseColor("#ddd")
			w.pdf.SetDrawColor(c[0], c[1], c[2])
			w.pdf.SetLineWidth(bl * pxToPt)
			w.pdf.Line(x, startY, x, w.y)
		}
	case "hr":
		w.ensure(1)
		c := parseColor("#ccc")
		w.pdf.SetDrawColor(c[0], c[1], c[2])
		w.pdf.SetLineWidth(0.75)
		w.pdf.Line(x, w.y, x+width, w.y)
		w.y += 0.75
	case "img":
		w.renderImage(el, st, x, width)
	}
	w.pendingMargin = max(w.pendingMargin, mb*pxToPt)
}

// advanceMargin collapses the previous bottom margin with top
func (w *writer) advanceMargin(top float64) {
	gap := max(w.pendingMargin, top)
	w.pendingMargin = 0
	if w.y <= w.top() {
		return
	}
	w.y += gap
}

// ensure starts a new page unless h more points fit on the current one
func (w *writer) ensure(h float64) {
	if w.y+h > w.bottom() && w.y > w.top() {
		w.pdf.AddPage()
		w.y = w.top()
	}
}

// word is a piece of text drawn with one style
type word struct {
	text  string
	st    style.ComputedStyle
	link  string
	space bool
	brk   bool
	width float64
}

// renderInline wraps the inline content of el into lines and draws them
func (w *writer) renderInline(el *html.Node, styles map[*html.Node]style.ComputedStyle, st style.ComputedStyle, x, width float64, marker string) {
	var c wordCollector
	for ch := el.FirstChild; ch != nil; ch = ch.NextSibling {
		c.collect(ch, styles, st, "")
	}
	words := c.words

	space := func(ws style.ComputedStyle) float64 {
		w.setFont(ws)
		return w.pdf.GetStringWidth(" ")
	}
	for i := range words {
		if words[i].brk {
			continue
		}
		w.setFont(words[i].st)
		words[i].width = w.pdf.GetStringWidth(w.tr(words[i].text))
	}

	type line struct {
		words  []word
		width  float64
		height float64
	}
	var lines []line
	cur := line{}
	flush := func() {
		if cur.height == 0 {
			cur.height = st.LineHeight() * pxToPt
		}
		lines = append(lines, cur)
		cur = line{}
	}
	for _, wd := range words {
		if wd.brk {
			flush()
			continue
		}
		gap := 0.0
		if wd.space && len(cur.words) > 0 {
			gap = space(wd.st)
		}
		if len(cur.words) > 0 && cur.width+gap+wd.width > width {
			flush()
			gap = 0
		}
		cur.width += gap + wd.width
		cur.height = max(cur.height, wd.st.LineHeight()*pxToPt)
		cur.words = append(cur.words, wd)
	}
	if len(cur.words) > 0 || len(lines) == 0 {
		flush()
	}

	align := st.Get("text-align")
	if (align == "" || align == "start" || align == "left") && text.IsRTL(el.TextContent()) {
		align = "right"
	}

	for i, ln := range lines {
		w.ensure(ln.height)
		lx := x
		switch align {
		case "center":
			lx = x + (width-ln.width)/2
		case "right", "end":
			lx = x + width - ln.width
		}
		baseline := w.y + ln.height/2 + st.FontSize()*pxToPt*0.35
		if i == 0 && marker != "" {
			w.setFont(st)
			mw := w.pdf.GetStringWidth(w.tr(marker))
			w.pdf.SetTextColor(0, 0, 0)
			w.pdf.Text(x-mw-6, baseline, w.tr(marker))
		}
		for j, wd := range ln.words {
			if wd.space && j > 0 {
				lx += space(wd.st)
			}
			w.setFont(wd.st)
			c := parseColor(wd.st.Get("color"))
			w.pdf.SetTextColor(c[0], c[1], c[2])
			w.pdf.Text(lx, baseline, w.tr(wd.text))
			if wd.link != "" {
				w.pdf.LinkString(lx, w.y, wd.width, ln.height, wd.link)
			}
			lx += wd.width
		}
		w.y += ln.height
	}
}

// wordCollector flattens inline content into words carrying their style.
// space records whether whitespace precedes the next word.
type wordCollector struct {
	words []word
	space bool
}

func (c *wordCollector) collect(n *html.Node, styles map[*html.Node]style.ComputedStyle, st style.ComputedStyle, link string) {
	switch n.Type {
	case xhtml.TextNode:
		s := n.Data
		if s != "" && isSpace(s[0]) {
			c.space = true
		}
		for i, f := range strings.Fields(s) {
			if i > 0 {
				c.space = true
			}
			c.words = append(c.words, word{text: f, st: st, link: link, space: c.space})
			c.space = false
		}
		if s != "" && isSpace(s[len(s)-1]) {
			c.space = true
		}
		return
	case xhtml.ElementNode:
	default:
		return
	}
	if s, ok := styles[n]; ok {
		st = s
	}
	switch strings.ToLower(n.Data) {
	case "br":
		c.words = append(c.words, word{st: st, brk: true})
		c.space = false
		return
	case "a":
		link, _ = n.GetAttr("href")
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.collect(ch, styles, st, link)
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

// renderPre draws preformatted lines without wrapping
func (w *writer) renderPre(el *html.Node, st style.ComputedStyle, x float64) {
	w.setFont(st)
	w.pdf.SetTextColor(0, 0, 0)
	lh := st.LineHeight() * pxToPt
	content := strings.TrimSuffix(el.TextContent(), "\n")
	for _, line := range strings.Split(content, "\n") {
		w.ensure(lh)
		w.pdf.Text(x, w.y+lh/2+st.FontSize()*pxToPt*0.35, w.tr(strings.ReplaceAll(line, "\t", "    ")))
		w.y += lh
	}
}

// setFont selects the core font matching st
func (w *writer) setFont(st style.ComputedStyle) {
	family := "Times"
	if ff := st.Get("font-family"); ff != "" {
		first := strings.Trim(strings.TrimSpace(strings.Split(ff, ",")[0]), "'\"")
		switch strings.ToLower(first) {
		case "arial", "helvetica", "sans-serif":
			family = "Helvetica"
		case "courier", "courier new", "monospace":
			family = "Courier"
		}
	}
	fontStyle := ""
	switch st.Get("font-weight") {
	case "bold", "bolder", "600", "700", "800", "900":
		fontStyle += "B"
	}
	if st.Get("font-style") == "italic" {
		fontStyle += "I"
	}
	if strings.Contains(st.Get("text-decoration"), "underline") {
		fontStyle += "U"
	}
	w.pdf.SetFont(family, fontStyle, st.FontSize()*pxToPt)
}

// parseColor parses a CSS color value, black when unknown
func parseColor(value string) [3]int {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "#") {
		if r, g, b, ok := parseHexColor(value); ok {
			return [3]int{r, g, b}
		}
	}

	var r, g, b int
	if _, err := fmt.Sscanf(value, "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
		return [3]int{r, g, b}
	}
	if _, err := fmt.Sscanf(value, "rgb(%d, %d, %d)", &r, &g, &b); err == nil {
		return [3]int{r, g, b}
	}

	return [3]int{0, 0, 0}
}

// parseHexColor parses #RRGGBB or #RGB into r,g,b
func parseHexColor(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

// imageContext bounds a single image load
func (w *writer) imageContext() (context.Context, context.CancelFunc) {
	timeout := w.r.ImageTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
