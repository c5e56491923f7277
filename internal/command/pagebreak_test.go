package command

import (
	"testing"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(text string) *document.Node {
	return document.NewParagraph(document.NewText(text))
}

func texts(doc *document.Document) []string {
	var out []string
	for _, b := range doc.Blocks() {
		switch {
		case b.IsManualBreak():
			out = append(out, "<manual>")
		case b.IsPageBreak():
			out = append(out, "<auto>")
		default:
			out = append(out, b.TextContent())
		}
	}
	return out
}

func TestInsertManualBreak(t *testing.T) {
	tests := []struct {
		name   string
		sel    document.Selection
		want   []string
		cursor int
	}{
		{
			name:   "splits paragraph at cursor",
			sel:    document.Cursor(6),
			want:   []string{"Hello", "<manual>", " world", "Second"},
			cursor: 8,
		},
		{
			name:   "between blocks",
			sel:    document.Cursor(13),
			want:   []string{"Hello world", "<manual>", "Second"},
			cursor: 14,
		},
		{
			name:   "start of paragraph",
			sel:    document.Cursor(1),
			want:   []string{"<manual>", "Hello world", "Second"},
			cursor: 1,
		},
		{
			name:   "end of paragraph",
			sel:    document.Cursor(12),
			want:   []string{"Hello world", "<manual>", "Second"},
			cursor: 14,
		},
		{
			name:   "replaces selection across blocks",
			sel:    document.Selection{Anchor: 16, Head: 3},
			want:   []string{"He", "<manual>", "cond"},
			cursor: 5,
		},
		{
			name:   "document end",
			sel:    document.Cursor(21),
			want:   []string{"Hello world", "Second", "<manual>"},
			cursor: 22,
		},
		{
			name:   "out of range cursor is clamped",
			sel:    document.Cursor(500),
			want:   []string{"Hello world", "Second", "<manual>"},
			cursor: 22,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.New(para("Hello world"), para("Second"))

			sel, err := InsertManualBreak(doc, tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(doc))
			assert.Equal(t, document.Cursor(tt.cursor), sel)
			assert.Equal(t, 1, doc.Version())

			idx, start := doc.BlockAt(sel.Head - 1)
			assert.True(t, doc.Block(idx).IsManualBreak(), "cursor sits after the marker")
			assert.Equal(t, sel.Head-1, start)
		})
	}
}

func TestInsertManualBreakKeepsBlockAttributes(t *testing.T) {
	bold := document.Mark{Type: document.MarkBold}
	h := document.NewHeading(2, document.NewText("Terms", bold), document.NewText(" and conditions"))
	doc := document.New(h)

	_, err := InsertManualBreak(doc, document.Cursor(4))
	require.NoError(t, err)
	require.Equal(t, 3, doc.Len())

	left, right := doc.Block(0), doc.Block(2)
	assert.Equal(t, 2, left.Level())
	assert.Equal(t, 2, right.Level())
	assert.Equal(t, "Ter", left.TextContent())
	assert.Equal(t, "ms and conditions", right.TextContent())
	assert.True(t, left.Content[0].HasMark(document.MarkBold))
	assert.True(t, right.Content[0].HasMark(document.MarkBold))
	assert.False(t, right.Content[1].HasMark(document.MarkBold))

	assert.Equal(t, "Terms and conditions", h.TextContent(), "original node is not modified")
}

func TestInsertManualBreakInsideList(t *testing.T) {
	item := &document.Node{Type: document.TypeListItem, Content: []*document.Node{para("a")}}
	list := &document.Node{Type: document.TypeBulletList, Content: []*document.Node{item}}
	doc := document.New(list, para("b"))

	sel, err := InsertManualBreak(doc, document.Cursor(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "<manual>", "b"}, texts(doc))
	assert.Same(t, list, doc.Block(0))
	assert.Equal(t, document.Cursor(8), sel)
}

func TestInsertManualBreakUnicode(t *testing.T) {
	doc := document.New(para("héllo wörld"))

	_, err := InsertManualBreak(doc, document.Cursor(7))
	require.NoError(t, err)
	assert.Equal(t, []string{"héllo ", "<manual>", "wörld"}, texts(doc))
}

func TestInsertManualBreakNilDocument(t *testing.T) {
	_, err := InsertManualBreak(nil, document.Cursor(0))
	assert.ErrorIs(t, err, document.ErrNoDocument)
}
