package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentWidth = 642

// line metrics of the content styles: 12pt Times at line-height 1.6
const (
	fontPx    = 16.0
	linePx    = fontPx * 1.6
	paraGapPx = 16.0
)

func measure(t *testing.T, n *document.Node) float64 {
	t.Helper()
	h, err := NewEngine(Options{Width: contentWidth}).Measure(n)
	require.NoError(t, err)
	return h
}

func para(text string) *document.Node {
	return document.NewParagraph(document.NewText(text))
}

func TestMeasureParagraph(t *testing.T) {
	assert.InDelta(t, linePx+paraGapPx, measure(t, para("Hello")), 0.001)
	assert.InDelta(t, linePx+paraGapPx, measure(t, document.NewParagraph()), 0.001, "empty paragraphs keep one line")

	withBreak := document.NewParagraph(document.NewText("a"), &document.Node{Type: document.TypeHardBreak}, document.NewText("b"))
	assert.InDelta(t, 2*linePx+paraGapPx, measure(t, withBreak), 0.001)
}

func TestMeasureWraps(t *testing.T) {
	text := strings.Repeat("The parties agree to the terms set out below. ", 40)
	h := measure(t, para(text))

	lines := (h - paraGapPx) / linePx
	assert.Greater(t, lines, 5.0)
	assert.InDelta(t, float64(int(lines+0.5)), lines, 0.001, "height is a whole number of lines")

	narrow, err := NewEngine(Options{Width: contentWidth / 2}).Measure(para(text))
	require.NoError(t, err)
	assert.Greater(t, narrow, h)
}

func TestMeasureHeading(t *testing.T) {
	h := measure(t, document.NewHeading(1, document.NewText("Agreement")))
	// 2em font, unitless line height and 0.67em margins on both sides
	assert.InDelta(t, 32*1.6+2*0.67*32, h, 0.001)
}

func TestMeasureCodeBlock(t *testing.T) {
	code := &document.Node{Type: document.TypeCodeBlock, Content: []*document.Node{document.NewText("a\nb\nc")}}
	codeFont := 10 * 96.0 / 72.0
	padding := 8 * 96.0 / 72.0
	assert.InDelta(t, 3*codeFont*1.4+2*padding+paraGapPx, measure(t, code), 0.001)
}

func TestMeasureList(t *testing.T) {
	item := func(text string) *document.Node {
		return &document.Node{Type: document.TypeListItem, Content: []*document.Node{para(text)}}
	}
	list := &document.Node{Type: document.TypeBulletList, Content: []*document.Node{item("one"), item("two")}}

	itemGap := 4 * 96.0 / 72.0
	assert.InDelta(t, 2*linePx+itemGap+paraGapPx, measure(t, list), 0.001)
}

func TestMeasureImageAndRule(t *testing.T) {
	img := &document.Node{Type: document.TypeImage, Attrs: map[string]any{"src": "seal.png", "width": float64(200), "height": float64(100)}}
	assert.InDelta(t, 100+paraGapPx, measure(t, img), 0.001)

	wide := &document.Node{Type: document.TypeImage, Attrs: map[string]any{"src": "seal.png", "width": float64(1284), "height": float64(100)}}
	assert.InDelta(t, 50+paraGapPx, measure(t, wide), 0.001)

	broken := &document.Node{Type: document.TypeImage, Attrs: map[string]any{"src": "missing.png"}}
	assert.InDelta(t, linePx+paraGapPx, measure(t, broken), 0.001)

	rule := &document.Node{Type: document.TypeHorizontalRule}
	assert.InDelta(t, 1+2*paraGapPx, measure(t, rule), 0.001)
}

func TestMeasureMarkerIsFlat(t *testing.T) {
	assert.Equal(t, 0.0, measure(t, document.NewManualBreak()))
	assert.Equal(t, 0.0, measure(t, nil))
}

func TestMeasureWithoutWidth(t *testing.T) {
	_, err := NewEngine(Options{}).Measure(para("x"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCachedMeasurer(t *testing.T) {
	calls := 0
	fail := false
	next := MeasureFunc(func(n *document.Node) (float64, error) {
		calls++
		if fail {
			return 0, errors.New("boom")
		}
		return float64(len(n.TextContent())), nil
	})
	c := NewCachedMeasurer(next, 2)

	h, err := c.Measure(para("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3.0, h)
	_, _ = c.Measure(para("abc"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	fail = true
	_, err = c.Measure(para("zz"))
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len(), "failures are not cached")

	fail = false
	_, _ = c.Measure(para("zz"))
	_, _ = c.Measure(para("yyy"))
	assert.Equal(t, 1, c.Len(), "cache is dropped when full")
}
