// Package pagedit keeps rich-text documents split into print pages. It
// imports documents, inserts automatic page breaks where content would
// overflow a page, tracks the page under the cursor and exports
// print-ready HTML and PDF.
package pagedit

import (
	"github.com/gompdf/pagedit/pkg/api"
)

type Editor = api.Editor
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation
type Measurer = api.Measurer
type MeasureFunc = api.MeasureFunc

type Document = api.Document
type Node = api.Node
type Selection = api.Selection
type Session = api.Session
type State = api.State
type Action = api.Action
type Result = api.Result
type Break = api.Break

func New(opts ...Option) *Editor             { return api.New(opts...) }
func NewWithOptions(options Options) *Editor { return api.NewWithOptions(options) }
func DefaultOptions() Options                { return api.DefaultOptions() }

var (
	WithPageSize        = api.WithPageSize
	WithNamedPageSize   = api.WithNamedPageSize
	WithMargins         = api.WithMargins
	WithHeaderFooter    = api.WithHeaderFooter
	WithContentHeight   = api.WithContentHeight
	WithDebounce        = api.WithDebounce
	WithDebug           = api.WithDebug
	WithLogger          = api.WithLogger
	WithMeasurer        = api.WithMeasurer
	WithResourcePath    = api.WithResourcePath
	WithTitle           = api.WithTitle
	WithAuthor          = api.WithAuthor
	WithSubject         = api.WithSubject
	WithKeywords        = api.WithKeywords
	WithHeaderText      = api.WithHeaderText
	WithExtraCSS        = api.WithExtraCSS
	WithPageSizeA4      = api.WithPageSizeA4
	WithPageSizeLetter  = api.WithPageSizeLetter
	WithPageSizeLegal   = api.WithPageSizeLegal
	WithPageOrientation = api.WithPageOrientation
)

const (
	PageSizeA3Width  = api.PageSizeA3Width
	PageSizeA3Height = api.PageSizeA3Height
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight

	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape
)
