package layout

import (
	"strings"

	"github.com/gompdf/pagedit/internal/parser/html"
	"github.com/gompdf/pagedit/internal/style"
)

// BlockBox represents a block-level box in the layout
type BlockBox struct {
	Node          *html.Node
	Style         style.ComputedStyle
	Width         float64
	Height        float64
	MarginTop     float64
	MarginRight   float64
	MarginBottom  float64
	MarginLeft    float64
	PaddingTop    float64
	PaddingRight  float64
	PaddingBottom float64
	PaddingLeft   float64
	BorderTop     float64
	BorderRight   float64
	BorderBottom  float64
	BorderLeft    float64
	Children      []Box
}

// NewBlockBox creates a new block box for an element
func NewBlockBox(node *html.Node, computedStyle style.ComputedStyle) *BlockBox {
	return &BlockBox{
		Node:  node,
		Style: computedStyle,
	}
}

// Layout sizes the box and its children inside availableWidth. Vertical
// margins of adjacent children collapse, and the first and last child's
// margins collapse through this box when no padding or border separates
// them.
func (b *BlockBox) Layout(availableWidth float64) error {
	b.parseBoxModel(availableWidth)

	b.Width = availableWidth - b.MarginLeft - b.MarginRight
	inner := b.Width - b.PaddingLeft - b.PaddingRight - b.BorderLeft - b.BorderRight
	if inner < 0 {
		inner = 0
	}

	collapseTop := b.PaddingTop == 0 && b.BorderTop == 0
	collapseBottom := b.PaddingBottom == 0 && b.BorderBottom == 0

	y := 0.0
	pending := 0.0
	for i, child := range b.Children {
		if err := child.Layout(inner); err != nil {
			return err
		}
		mt := child.GetMarginTop()
		if i == 0 && collapseTop {
			b.MarginTop = max(b.MarginTop, mt)
		} else {
			y += max(pending, mt)
		}
		y += child.GetHeight()
		pending = child.GetMarginBottom()
	}
	if len(b.Children) > 0 {
		if collapseBottom {
			b.MarginBottom = max(b.MarginBottom, pending)
		} else {
			y += pending
		}
	}

	b.Height = y + b.PaddingTop + b.PaddingBottom + b.BorderTop + b.BorderBottom
	if h, ok := style.Length(b.Style.Get("height"), b.Style.FontSize(), 0); ok && b.Style.Get("height") != "auto" {
		b.Height = max(h, b.PaddingTop+b.PaddingBottom+b.BorderTop+b.BorderBottom)
	}
	return nil
}

func (b *BlockBox) parseBoxModel(availableWidth float64) {
	b.MarginTop, b.MarginRight, b.MarginBottom, b.MarginLeft = b.Style.Box("margin", availableWidth)
	b.PaddingTop, b.PaddingRight, b.PaddingBottom, b.PaddingLeft = b.Style.Box("padding", availableWidth)
	b.BorderTop, b.BorderRight, b.BorderBottom, b.BorderLeft = b.Style.BorderWidths()
}

// AddChild appends a child box
func (b *BlockBox) AddChild(child Box) {
	b.Children = append(b.Children, child)
}

func (b *BlockBox) GetWidth() float64        { return b.Width }
func (b *BlockBox) GetHeight() float64       { return b.Height }
func (b *BlockBox) GetMarginTop() float64    { return b.MarginTop }
func (b *BlockBox) GetMarginBottom() float64 { return b.MarginBottom }
func (b *BlockBox) GetNode() *html.Node      { return b.Node }

func isBlockTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li",
		"blockquote", "pre", "hr", "section", "article", "table", "tr", "img":
		return true
	}
	return false
}
