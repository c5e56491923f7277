// Package htmldoc renders a document as a standalone, print-ready HTML page.
package htmldoc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/parser/css"
	"github.com/gompdf/pagedit/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// FileName is the name offered for downloaded exports
const FileName = "document.html"

// ErrNothingToExport is returned for documents without content
var ErrNothingToExport = errors.New("nothing to export")

// Options configures the exported page
type Options struct {
	Title      string
	HeaderText string
	// PageSize is the CSS @page size keyword, A4 when empty
	PageSize string
	// Margin is the CSS @page margin, 2cm when empty
	Margin string
	// ExtraCSS is appended after the print styles
	ExtraCSS string
}

// DefaultOptions returns the options used by the editor's export
func DefaultOptions() Options {
	return Options{
		Title:      "Legal Document Export",
		HeaderText: "Legal Document",
		PageSize:   "A4",
		Margin:     "2cm",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.HeaderText == "" {
		o.HeaderText = d.HeaderText
	}
	if o.PageSize == "" {
		o.PageSize = d.PageSize
	}
	if o.Margin == "" {
		o.Margin = d.Margin
	}
	return o
}

// ExportHTML renders doc as a complete HTML page carrying the print
// stylesheet. Page-break markers are kept so that print engines start a new
// page at each of them.
func ExportHTML(doc *document.Document, opts Options) (string, error) {
	if doc == nil || doc.IsEmpty() {
		return "", ErrNothingToExport
	}
	opts = opts.withDefaults()

	sheet := PrintStylesheet(opts)
	if opts.ExtraCSS != "" {
		extra, err := css.NewParser().ParseString(opts.ExtraCSS)
		if err != nil {
			return "", fmt.Errorf("parse extra css: %w", err)
		}
		sheet.Append(extra)
	}

	root := html.NewElement("html", xhtml.Attribute{Key: "lang", Val: "en"})
	head := html.NewElement("head")
	head.AppendChild(html.NewElement("meta", xhtml.Attribute{Key: "charset", Val: "utf-8"}))
	title := html.NewElement("title")
	title.AppendChild(html.NewTextNode(opts.Title))
	head.AppendChild(title)
	styleEl := html.NewElement("style")
	styleEl.AppendChild(html.NewTextNode("\n" + sheet.String()))
	head.AppendChild(styleEl)
	root.AppendChild(head)

	body := html.NewElement("body")
	wrapper := html.NewElement("div", xhtml.Attribute{Key: "class", Val: "document-export"})
	for _, n := range html.FromDocument(doc) {
		wrapper.AppendChild(n)
	}
	body.AppendChild(wrapper)
	root.AppendChild(body)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n")
	if err := html.RenderNode(&buf, root); err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// PrintStylesheet builds the print styles: the paged-media @page rule with
// a running header and a page counter footer, the body typography, forced
// breaks at markers and avoid-break rules for headings, paragraphs and lists.
func PrintStylesheet(opts Options) *css.Stylesheet {
	opts = opts.withDefaults()

	marginBox := func(name, content, border, padding string) *css.Rule {
		return &css.Rule{
			Selectors: []string{name},
			Declarations: decls(
				"content", content,
				"font-family", "Arial, sans-serif",
				"font-size", "10pt",
				"color", "#666",
				border, "1px solid #ddd",
				padding, "0.5cm",
			),
		}
	}

	important := func(pairs ...string) []*css.Declaration {
		out := decls(pairs...)
		for _, d := range out {
			d.Important = true
		}
		return out
	}

	return &css.Stylesheet{Rules: []*css.Rule{
		{
			Selectors: []string{"@page"},
			Declarations: decls(
				"size", opts.PageSize,
				"margin", opts.Margin,
				"counter-increment", "page",
			),
			Rules: []*css.Rule{
				marginBox("@top-center", css.Quote(opts.HeaderText), "border-bottom", "padding-bottom"),
				marginBox("@bottom-center", `"Page " counter(page) " of " counter(pages)`, "border-top", "padding-top"),
			},
		},
		{
			Selectors: []string{"body"},
			Declarations: decls(
				"font-family", "'Times New Roman', serif",
				"font-size", "12pt",
				"line-height", "1.6",
				"margin", "0",
				"padding", "0",
				"counter-reset", "page",
			),
		},
		{
			Selectors:    []string{".document-export"},
			Declarations: decls("max-width", "100%"),
		},
		{
			Selectors: []string{"[data-page-break]"},
			Declarations: important(
				"page-break-before", "always",
				"break-before", "page",
				"height", "0",
				"border", "none",
				"margin", "0",
				"padding", "0",
				"display", "block",
			),
		},
		{
			Selectors: []string{"h1", "h2", "h3", "h4", "h5", "h6"},
			Declarations: decls(
				"break-after", "avoid",
				"page-break-after", "avoid",
				"orphans", "3",
				"widows", "3",
			),
		},
		{
			Selectors: []string{"p"},
			Declarations: decls(
				"margin", "0 0 12pt 0",
				"orphans", "3",
				"widows", "3",
			),
		},
		{
			Selectors: []string{"ul", "ol"},
			Declarations: decls(
				"break-inside", "avoid",
				"page-break-inside", "avoid",
			),
		},
	}}
}

// decls turns property/value pairs into declarations
func decls(pairs ...string) []*css.Declaration {
	out := make([]*css.Declaration, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, &css.Declaration{Property: pairs[i], Value: pairs[i+1]})
	}
	return out
}
