package api

import (
	"log/slog"
	"time"

	"github.com/gompdf/pagedit/internal/layout"
	"github.com/gompdf/pagedit/internal/pagination"
	"github.com/gompdf/pagedit/internal/session"
)

// Options represents configuration options for the editor. Lengths are CSS
// pixels at 96 DPI.
type Options struct {
	// Page dimensions
	PageWidth  float64
	PageHeight float64
	// Page orientation: portrait or landscape
	PageOrientation PageOrientation

	// Page margins
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// Running header and footer bands
	HeaderHeight float64
	FooterHeight float64
	// ContentHeight replaces the height derived from the page geometry
	// when positive
	ContentHeight float64

	// Pagination scheduling of sessions
	Debounce time.Duration
	Settle   time.Duration

	// Debug switches logging to debug level and starts sessions with the
	// debug toggle on
	Debug bool
	// Logger receives editor logs; nothing is logged when nil
	Logger *slog.Logger

	// Measurer replaces the layout engine when measuring blocks
	Measurer Measurer

	// Resource paths
	ResourcePaths []string

	// Document metadata
	Title      string
	Author     string
	Subject    string
	Keywords   string
	HeaderText string

	// ExtraCSS is appended to the HTML export's print styles
	ExtraCSS string
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait sets the page to portrait orientation
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape sets the page to landscape orientation
	PageOrientationLandscape PageOrientation = "landscape"
)

// DefaultOptions returns A4 with 2cm margins and the editor's header and
// footer bands
func DefaultOptions() Options {
	d := pagination.DefaultOptions()
	return Options{
		PageWidth:       d.PageWidth,
		PageHeight:      d.PageHeight,
		PageOrientation: PageOrientationPortrait,

		MarginTop:    d.MarginTop,
		MarginRight:  d.MarginRight,
		MarginBottom: d.MarginBottom,
		MarginLeft:   d.MarginLeft,
		HeaderHeight: d.HeaderHeight,
		FooterHeight: d.FooterHeight,

		Debounce: session.DefaultDebounce,
		Settle:   session.DefaultSettle,

		ResourcePaths: []string{},

		Title:      "Legal Document Export",
		HeaderText: "Legal Document",
	}
}

// Layout returns the page geometry as pagination options, with the page
// turned to match the orientation
func (o Options) Layout() pagination.Options {
	w, h := o.PageWidth, o.PageHeight
	switch o.PageOrientation {
	case PageOrientationLandscape:
		if w < h {
			w, h = h, w
		}
	default:
		if w > h {
			w, h = h, w
		}
	}
	return pagination.Options{
		PageWidth:             w,
		PageHeight:            h,
		MarginTop:             o.MarginTop,
		MarginRight:           o.MarginRight,
		MarginBottom:          o.MarginBottom,
		MarginLeft:            o.MarginLeft,
		HeaderHeight:          o.HeaderHeight,
		FooterHeight:          o.FooterHeight,
		ContentHeightOverride: o.ContentHeight,
	}
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargins sets the page margins
func WithMargins(top, right, bottom, left float64) Option {
	return func(o *Options) {
		o.MarginTop = top
		o.MarginRight = right
		o.MarginBottom = bottom
		o.MarginLeft = left
	}
}

// WithHeaderFooter sets the heights of the running header and footer
func WithHeaderFooter(header, footer float64) Option {
	return func(o *Options) {
		o.HeaderHeight = header
		o.FooterHeight = footer
	}
}

// WithContentHeight fixes the usable page height
func WithContentHeight(height float64) Option {
	return func(o *Options) {
		o.ContentHeight = height
	}
}

// WithDebounce sets how long sessions wait after the last edit before
// paginating
func WithDebounce(d time.Duration) Option {
	return func(o *Options) {
		o.Debounce = d
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMeasurer replaces block measurement
func WithMeasurer(m Measurer) Option {
	return func(o *Options) {
		o.Measurer = m
	}
}

// WithResourcePath adds a path to search for images
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithHeaderText sets the running header printed on every page
func WithHeaderText(text string) Option {
	return func(o *Options) {
		o.HeaderText = text
	}
}

// WithExtraCSS appends print styles to the HTML export
func WithExtraCSS(css string) Option {
	return func(o *Options) {
		o.ExtraCSS = css
	}
}

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// Standard page sizes in CSS pixels (1/96 inch)
const (
	PageSizeA3Width  = 1123
	PageSizeA3Height = 1587
	PageSizeA4Width  = 794
	PageSizeA4Height = 1123
	PageSizeA5Width  = 559
	PageSizeA5Height = 794

	// US Letter and Legal
	PageSizeLetterWidth  = 816
	PageSizeLetterHeight = 1056
	PageSizeLegalWidth   = 816
	PageSizeLegalHeight  = 1344
)

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}

// WithNamedPageSize sets a standard size by name (A3, A4, A5, Letter,
// Legal). Unknown names are ignored.
func WithNamedPageSize(name string) Option {
	return func(o *Options) {
		if size, ok := pagination.PageSizeByName(name); ok {
			o.PageWidth = size.Width
			o.PageHeight = size.Height
		}
	}
}

// Measurer returns the outer height in pixels of a top-level block
type Measurer = layout.Measurer

// MeasureFunc adapts a function to Measurer
type MeasureFunc = layout.MeasureFunc
