package pagination

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// block returns a one-character paragraph (size 3) whose measured height is h
func block(h float64) *document.Node {
	p := document.NewParagraph(document.NewText("x"))
	p.Attrs = map[string]any{"h": h}
	return p
}

var byAttr = layout.MeasureFunc(func(n *document.Node) (float64, error) {
	h, _ := n.Attrs["h"].(float64)
	return h, nil
})

func newEngine() *Engine {
	return NewEngine(byAttr)
}

func autoMarkers(doc *document.Document) int {
	n := 0
	for _, m := range doc.Markers() {
		if !m.Manual {
			n++
		}
	}
	return n
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, 861.0, o.ContentHeight())
	assert.Equal(t, 642.0, o.ContentWidth())
	require.NoError(t, o.Validate())

	o.ContentHeightOverride = 500
	assert.Equal(t, 500.0, o.ContentHeight())

	o = DefaultOptions()
	o.HeaderHeight = 2000
	assert.Error(t, o.Validate())

	size, ok := PageSizeByName("letter")
	require.True(t, ok)
	assert.Equal(t, PageSizeLetter, size)
}

func TestRepaginateInsertsBreakBeforeOverflow(t *testing.T) {
	a, b, c := block(400), block(400), block(400)
	doc := document.New(a, b, c)

	res, err := newEngine().Repaginate(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.True(t, res.Changed)
	assert.Equal(t, []Break{{Pos: 6, Manual: false}}, res.Breaks)
	assert.Equal(t, []float64{800, 400}, res.PageHeights)

	require.Equal(t, 4, doc.Len())
	assert.Same(t, a, doc.Block(0))
	assert.Same(t, b, doc.Block(1))
	assert.True(t, doc.Block(2).IsAutoBreak())
	assert.Same(t, c, doc.Block(3))
}

func TestRepaginateManualBreaks(t *testing.T) {
	doc := document.New(block(300), block(300), document.NewManualBreak(), block(300), block(300))

	res, err := newEngine().Repaginate(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.False(t, res.Changed)
	assert.Equal(t, 0, autoMarkers(doc))
	assert.Equal(t, []Break{{Pos: 6, Manual: true}}, res.Breaks)
	assert.Equal(t, []float64{600, 600}, res.PageHeights)
}

func TestRepaginateOversizedBlockSitsAlone(t *testing.T) {
	doc := document.New(block(100), block(1500), block(100))

	res, err := newEngine().Repaginate(doc)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, []float64{100, 1500, 100}, res.PageHeights)

	first := document.New(block(1500), block(100))
	res, err = newEngine().Repaginate(first)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, []Break{{Pos: 3}}, res.Breaks, "no marker before the first block")
}

func TestRepaginateIsIdempotent(t *testing.T) {
	doc := document.New(block(500), block(500), block(500), document.NewManualBreak(), block(900), block(10))
	e := newEngine()

	first, err := e.Repaginate(doc)
	require.NoError(t, err)
	require.True(t, first.Changed)
	version := doc.Version()
	blocks := doc.Blocks()

	second, err := e.Repaginate(doc)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, version, doc.Version())
	assert.Equal(t, blocks, doc.Blocks())
	assert.Equal(t, first.Pages, second.Pages)
	assert.Equal(t, first.Breaks, second.Breaks)
}

func TestRepaginateReplacesStaleAutoMarkers(t *testing.T) {
	// automatic markers in the wrong places, including a legacy one
	// without any tag
	legacy := &document.Node{Type: document.TypePageBreak}
	doc := document.New(document.NewAutoBreak(), block(100), legacy, block(100), block(100), document.NewAutoBreak())

	res, err := newEngine().Repaginate(doc)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.Pages)
	assert.Empty(t, res.Breaks)
	assert.Equal(t, 3, doc.Len())
	assert.Empty(t, doc.Markers())
}

func TestRepaginateKeepsManualMarkers(t *testing.T) {
	doc := document.New(document.NewManualBreak(), block(700), block(700), document.NewManualBreak(), document.NewManualBreak(), block(10))

	res, err := newEngine().Repaginate(doc)
	require.NoError(t, err)

	manual := 0
	for _, m := range doc.Markers() {
		if m.Manual {
			manual++
		}
	}
	assert.Equal(t, 3, manual)
	assert.Equal(t, 5, res.Pages)
	assert.Equal(t, []float64{0, 700, 700, 0, 10}, res.PageHeights)
}

func TestRepaginatePageHeightBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var blocks []*document.Node
	for i := 0; i < 200; i++ {
		if rng.Intn(15) == 0 {
			blocks = append(blocks, document.NewManualBreak())
			continue
		}
		blocks = append(blocks, block(float64(1+rng.Intn(600))))
	}
	doc := document.New(blocks...)
	e := newEngine()

	res, err := e.Repaginate(doc)
	require.NoError(t, err)
	require.Len(t, res.PageHeights, res.Pages)
	for i, h := range res.PageHeights {
		assert.LessOrEqual(t, h, e.Options().ContentHeight(), "page %d", i+1)
	}
	assert.Equal(t, res.Pages, len(doc.Markers())+1)
}

func TestRepaginateMeasureFailureLeavesDocument(t *testing.T) {
	boom := errors.New("not attached")
	calls := 0
	failing := layout.MeasureFunc(func(n *document.Node) (float64, error) {
		calls++
		if calls == 3 {
			return 0, boom
		}
		return 500, nil
	})
	doc := document.New(block(0), document.NewAutoBreak(), block(0), block(0), block(0))
	before := doc.Blocks()

	_, err := NewEngine(failing).Repaginate(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMeasureUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, doc.Blocks())
	assert.Equal(t, 0, doc.Version())
}

func TestRepaginateNilAndEmpty(t *testing.T) {
	res, err := newEngine().Repaginate(nil)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	res, err = newEngine().Repaginate(document.New())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)
	assert.False(t, res.Changed)

	_, err = NewEngine(nil).Repaginate(document.New(block(1)))
	assert.ErrorIs(t, err, ErrMeasureUnavailable)
}

func TestRepaginateWithLayoutEngine(t *testing.T) {
	o := DefaultOptions()
	measurer := layout.NewEngine(layout.Options{Width: o.ContentWidth()})

	text := strings.Repeat("Each party shall keep the terms of this agreement confidential. ", 6)
	var blocks []*document.Node
	for i := 0; i < 40; i++ {
		blocks = append(blocks, document.NewParagraph(document.NewText(text)))
	}
	doc := document.New(blocks...)

	res, err := NewEngine(measurer).Repaginate(doc)
	require.NoError(t, err)
	assert.Greater(t, res.Pages, 2)
	assert.Equal(t, res.Pages-1, autoMarkers(doc))
	for _, h := range res.PageHeights {
		assert.LessOrEqual(t, h, o.ContentHeight())
	}
}

func TestCurrentPage(t *testing.T) {
	// p(3) manual(1) p(3) auto(1) p(3)
	doc := document.New(block(1), document.NewManualBreak(), block(1), document.NewAutoBreak(), block(1))

	tests := []struct {
		cursor int
		want   int
	}{
		{0, 1},
		{3, 1},
		{4, 2},
		{7, 2},
		{8, 3},
		{11, 3},
	}
	last := 0
	for _, tt := range tests {
		got := CurrentPage(doc, tt.cursor)
		assert.Equal(t, tt.want, got, "cursor %d", tt.cursor)
		assert.GreaterOrEqual(t, got, last)
		last = got
	}

	assert.Equal(t, 1, CurrentPage(nil, 10))
	assert.Equal(t, 1, CurrentPage(document.New(), 0))
}
