package layout

import (
	"github.com/gompdf/pagedit/internal/parser/html"
)

// Box is a laid-out piece of a block. Heights exclude vertical margins,
// which parents collapse and add themselves.
type Box interface {
	Layout(availableWidth float64) error
	GetWidth() float64
	GetHeight() float64
	GetMarginTop() float64
	GetMarginBottom() float64
	GetNode() *html.Node
}

// OuterHeight returns the height of b including its vertical margins
func OuterHeight(b Box) float64 {
	return b.GetMarginTop() + b.GetHeight() + b.GetMarginBottom()
}
