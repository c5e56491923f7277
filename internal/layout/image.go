package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/pagedit/internal/parser/html"
	"github.com/gompdf/pagedit/internal/style"
)

// ImageBox represents an image block. It is sized from its width and height
// attributes, falling back to the intrinsic size of the image, and shrinks
// to fit the available width keeping its aspect ratio.
type ImageBox struct {
	Node         *html.Node
	Style        style.ComputedStyle
	Width        float64
	Height       float64
	MarginTop    float64
	MarginBottom float64

	// intrinsic looks up the natural size of the image
	intrinsic func(src string) (w, h float64, ok bool)
}

func (b *ImageBox) Layout(availableWidth float64) error {
	b.MarginTop, _, b.MarginBottom, _ = b.Style.Box("margin", availableWidth)

	w := b.dimension("width", availableWidth)
	h := b.dimension("height", availableWidth)

	if w == 0 || h == 0 {
		src, _ := b.Node.GetAttr("src")
		iw, ih, ok := 0.0, 0.0, false
		if src != "" && b.intrinsic != nil {
			iw, ih, ok = b.intrinsic(src)
		}
		switch {
		case ok && w == 0 && h == 0:
			w, h = iw, ih
		case ok && w == 0:
			w = h * iw / ih
		case ok && h == 0:
			h = w * ih / iw
		case w == 0 && h == 0:
			// broken image: the alt text occupies one line
			b.Width, b.Height = 0, b.Style.LineHeight()
			return nil
		case w == 0:
			w = h
		default:
			h = w
		}
	}

	if w > availableWidth && availableWidth > 0 {
		h = h * availableWidth / w
		w = availableWidth
	}
	b.Width, b.Height = w, h
	return nil
}

// dimension reads a size from CSS first and then from the HTML attribute
func (b *ImageBox) dimension(name string, availableWidth float64) float64 {
	if v, ok := style.Length(b.Style.Get(name), b.Style.FontSize(), availableWidth); ok && v > 0 {
		return v
	}
	if raw, ok := b.Node.GetAttr(name); ok {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "px"), 64); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

func (b *ImageBox) GetWidth() float64        { return b.Width }
func (b *ImageBox) GetHeight() float64       { return b.Height }
func (b *ImageBox) GetMarginTop() float64    { return b.MarginTop }
func (b *ImageBox) GetMarginBottom() float64 { return b.MarginBottom }
func (b *ImageBox) GetNode() *html.Node      { return b.Node }
