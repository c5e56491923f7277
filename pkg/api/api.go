package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gompdf/pagedit/internal/command"
	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/layout"
	"github.com/gompdf/pagedit/internal/pagination"
	"github.com/gompdf/pagedit/internal/parser"
	"github.com/gompdf/pagedit/internal/render/htmldoc"
	"github.com/gompdf/pagedit/internal/render/pdf"
	"github.com/gompdf/pagedit/internal/res"
	"github.com/gompdf/pagedit/internal/session"
)

type (
	Document  = document.Document
	Node      = document.Node
	Selection = document.Selection
	Session   = session.Session
	State     = session.State
	Action    = session.Action
	Result    = pagination.Result
	Break     = pagination.Break
)

// Editor loads documents, keeps them paginated and exports them
type Editor struct {
	options Options
	loader  *res.Loader
	logger  *slog.Logger
}

// New creates an editor with the default options and the given overrides
func New(opts ...Option) *Editor {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates an editor with the specified options
func NewWithOptions(options Options) *Editor {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	loader := res.NewLoader("")
	for _, path := range options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	return &Editor{options: options, loader: loader, logger: logger}
}

// Options returns the editor's options
func (e *Editor) Options() Options {
	return e.options
}

// WithOption returns a new editor with the specified option set
func (e *Editor) WithOption(option Option) *Editor {
	newOptions := e.options
	newOptions.ResourcePaths = append([]string(nil), e.options.ResourcePaths...)
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// LoadJSON reads a TipTap JSON document
func (e *Editor) LoadJSON(r io.Reader) (*Document, error) {
	return document.ParseJSON(r)
}

// LoadHTML reads an HTML page or fragment, including pages written by
// ExportHTML
func (e *Editor) LoadHTML(r io.Reader) (*Document, error) {
	return (&parser.HTMLParser{}).Parse(r, "")
}

// LoadMarkdown reads Markdown
func (e *Editor) LoadMarkdown(r io.Reader) (*Document, error) {
	return (&parser.MarkdownParser{}).Parse(r, "")
}

// LoadFile reads a document in any importable format, chosen by file
// extension. Images are then also looked up next to the file.
func (e *Editor) LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	doc, err := parser.ParseFile(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	e.loader.AddSearchPath(filepath.Dir(path))
	return doc, nil
}

// LoadURL fetches and imports a document. The format comes from the URL's
// file name, or from the content type when the name has no known
// extension.
func (e *Editor) LoadURL(ctx context.Context, url string) (*Document, error) {
	resource, err := e.loader.Load(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	name := resource.Name()
	if !parser.IsSupportedExtension(name) {
		name += extensionFor(resource.MimeType)
	}
	doc, err := parser.ParseFile(bytes.NewReader(resource.Data), name)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", url, err)
	}
	return doc, nil
}

func extensionFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "markdown"):
		return ".md"
	case strings.Contains(mimeType, "json"):
		return ".json"
	case strings.HasPrefix(mimeType, "text/plain"):
		return ".txt"
	case strings.Contains(mimeType, "wordprocessingml"):
		return ".docx"
	}
	return ".html"
}

// Measurer returns the block measurer used for pagination
func (e *Editor) Measurer() Measurer {
	if e.options.Measurer != nil {
		return e.options.Measurer
	}
	return layout.NewCachedMeasurer(layout.NewEngine(layout.Options{
		Width:  e.options.Layout().ContentWidth(),
		Loader: e.loader,
	}), 0)
}

// NewSession opens an editing session on doc. Sessions paginate in the
// background after edits; call Close when done.
func (e *Editor) NewSession(id string, doc *Document) *Session {
	return session.New(id, doc, session.Options{
		Pagination: e.options.Layout(),
		Debounce:   e.options.Debounce,
		Settle:     e.options.Settle,
		Debug:      e.options.Debug,
		Measurer:   e.Measurer(),
		Loader:     e.loader,
		Logger:     e.logger,
	})
}

// Paginate runs one pagination pass over doc, replacing its automatic
// page breaks
func (e *Editor) Paginate(doc *Document) (Result, error) {
	engine := pagination.NewEngine(e.Measurer())
	engine.SetOptions(e.options.Layout())
	result, err := engine.Repaginate(doc)
	if err != nil {
		return result, err
	}
	e.logger.Debug("paginated", "pages", result.Pages, "changed", result.Changed)
	return result, nil
}

// InsertPageBreak inserts a manual page break at sel and returns the new
// cursor
func (e *Editor) InsertPageBreak(doc *Document, sel Selection) (Selection, error) {
	return command.InsertManualBreak(doc, sel)
}

// CurrentPage returns the 1-based page of the cursor position
func (e *Editor) CurrentPage(doc *Document, cursor int) int {
	return pagination.CurrentPage(doc, cursor)
}

// ExportHTML renders doc as a print-ready HTML page
func (e *Editor) ExportHTML(doc *Document) (string, error) {
	return htmldoc.ExportHTML(doc, htmldoc.Options{
		Title:      e.options.Title,
		HeaderText: e.options.HeaderText,
		PageSize:   cssPageSize(e.options.Layout()),
		ExtraCSS:   e.options.ExtraCSS,
	})
}

// cssPageSize names the page for the @page rule, falling back to explicit
// dimensions
func cssPageSize(o pagination.Options) string {
	for _, name := range []string{"A3", "A4", "A5", "Letter", "Legal"} {
		size, _ := pagination.PageSizeByName(name)
		if size.Width == o.PageWidth && size.Height == o.PageHeight {
			return name
		}
		if size.Width == o.PageHeight && size.Height == o.PageWidth {
			return name + " landscape"
		}
	}
	return fmt.Sprintf("%gpx %gpx", o.PageWidth, o.PageHeight)
}

// ExportPDF prints doc as PDF to w
func (e *Editor) ExportPDF(doc *Document, w io.Writer) error {
	return e.renderer().Render(doc, w, e.renderOptions())
}

// ExportPDFFile prints doc to a PDF file
func (e *Editor) ExportPDFFile(doc *Document, outputPath string) error {
	return e.renderer().RenderFile(doc, outputPath, e.renderOptions())
}

func (e *Editor) renderer() *pdf.Renderer {
	r := pdf.NewRenderer()
	r.Layout = e.options.Layout()
	r.Loader = e.loader
	r.Logger = e.logger
	return r
}

func (e *Editor) renderOptions() pdf.RenderOptions {
	return pdf.RenderOptions{
		Title:      e.options.Title,
		Author:     e.options.Author,
		Subject:    e.options.Subject,
		Keywords:   e.options.Keywords,
		Creator:    "pagedit",
		HeaderText: e.options.HeaderText,
	}
}

// ConvertFile imports inputPath, paginates it and writes outputPath. The
// output format follows the output extension: .pdf prints, anything else
// writes the HTML export.
func (e *Editor) ConvertFile(inputPath, outputPath string) error {
	doc, err := e.LoadFile(inputPath)
	if err != nil {
		return err
	}
	return e.Convert(doc, outputPath)
}

// Convert paginates doc and writes it to outputPath
func (e *Editor) Convert(doc *Document, outputPath string) error {
	if _, err := e.Paginate(doc); err != nil {
		return fmt.Errorf("failed to paginate: %w", err)
	}
	if strings.EqualFold(filepath.Ext(outputPath), ".pdf") {
		if err := e.ExportPDFFile(doc, outputPath); err != nil {
			return fmt.Errorf("failed to render PDF: %w", err)
		}
		return nil
	}

	page, err := e.ExportHTML(doc)
	if err != nil {
		return fmt.Errorf("failed to export HTML: %w", err)
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return os.WriteFile(outputPath, []byte(page), 0644)
}
