package api

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed reports a height of 300px for every content block
var fixed = MeasureFunc(func(n *Node) (float64, error) {
	if n.IsPageBreak() {
		return 0, nil
	}
	return 300, nil
})

func paragraphs(n int) *Document {
	blocks := make([]*Node, n)
	for i := range blocks {
		blocks[i] = document.NewParagraph(document.NewText("Clause"))
	}
	return document.New(blocks...)
}

func TestOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, 861.0, o.Layout().ContentHeight())
	assert.Equal(t, 642.0, o.Layout().ContentWidth())

	e := New(WithPageSizeLetter(), WithPageOrientation(PageOrientationLandscape), WithContentHeight(500))
	l := e.Options().Layout()
	assert.Equal(t, 1056.0, l.PageWidth)
	assert.Equal(t, 816.0, l.PageHeight)
	assert.Equal(t, 500.0, l.ContentHeight())
	assert.Equal(t, "Letter landscape", cssPageSize(l))

	e = New(WithNamedPageSize("a5"), WithMargins(10, 20, 30, 40), WithHeaderFooter(0, 0))
	l = e.Options().Layout()
	assert.Equal(t, 559.0, l.PageWidth)
	assert.Equal(t, 559.0-60, l.ContentWidth())
	assert.Equal(t, 794.0-40, l.ContentHeight())
	assert.Equal(t, "A5", cssPageSize(l))

	custom := New(WithPageSize(700, 900)).Options().Layout()
	assert.Equal(t, "700px 900px", cssPageSize(custom))
}

func TestWithOptionCopies(t *testing.T) {
	base := New(WithResourcePath("a"))
	derived := base.WithOption(WithResourcePath("b"))
	assert.Equal(t, []string{"a"}, base.Options().ResourcePaths)
	assert.Equal(t, []string{"a", "b"}, derived.Options().ResourcePaths)
}

func TestPaginate(t *testing.T) {
	e := New(WithMeasurer(fixed))
	doc := paragraphs(7)

	res, err := e.Paginate(doc)
	require.NoError(t, err)
	// two blocks fit in 861px
	assert.Equal(t, 4, res.Pages)
	assert.Len(t, res.Breaks, 3)
	assert.Equal(t, 4, e.CurrentPage(doc, doc.Size()))

	again, err := e.Paginate(doc)
	require.NoError(t, err)
	assert.False(t, again.Changed)
}

func TestInsertPageBreak(t *testing.T) {
	e := New(WithMeasurer(fixed))
	doc := paragraphs(2)

	sel, err := e.InsertPageBreak(doc, document.Cursor(8))
	require.NoError(t, err)
	assert.Equal(t, 9, sel.Head)
	require.Len(t, doc.Markers(), 1)
	assert.True(t, doc.Markers()[0].Manual)
	assert.Equal(t, 2, e.CurrentPage(doc, sel.Head))
}

func TestSession(t *testing.T) {
	e := New(WithMeasurer(fixed), WithDebounce(5*time.Millisecond), WithDebug(true))
	sess := e.NewSession("s1", paragraphs(3))
	defer sess.Close()

	assert.True(t, sess.State().Debug)
	assert.Eventually(t, func() bool {
		return sess.State().TotalPages == 2
	}, time.Second, 5*time.Millisecond)
}

func TestLoaders(t *testing.T) {
	e := New()

	doc, err := e.LoadJSON(strings.NewReader(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Hi"}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Hi", doc.Text())

	doc, err = e.LoadHTML(strings.NewReader(`<h1>Title</h1><p>Body</p>`))
	require.NoError(t, err)
	assert.Equal(t, "Title\nBody", doc.Text())

	doc, err = e.LoadMarkdown(strings.NewReader("# Title\n\nBody\n"))
	require.NoError(t, err)
	assert.Equal(t, "Title\nBody", doc.Text())

	_, err = e.LoadFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".md", extensionFor("text/markdown; charset=utf-8"))
	assert.Equal(t, ".json", extensionFor("application/json"))
	assert.Equal(t, ".txt", extensionFor("text/plain"))
	assert.Equal(t, ".html", extensionFor("text/html"))
	assert.Equal(t, ".html", extensionFor(""))
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "contract.md")
	require.NoError(t, os.WriteFile(input, []byte("# Agreement\n\nFirst clause.\n\n<!-- pagebreak -->\n\nSecond clause.\n"), 0o644))

	e := New(WithTitle("Agreement"))

	htmlOut := filepath.Join(dir, "out", "contract.html")
	require.NoError(t, e.ConvertFile(input, htmlOut))
	page, err := os.ReadFile(htmlOut)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Agreement</title>")
	assert.Equal(t, 1, strings.Count(string(page), `data-page-break="true"`))

	pdfOut := filepath.Join(dir, "out", "contract.pdf")
	require.NoError(t, e.ConvertFile(input, pdfOut))
	data, err := os.ReadFile(pdfOut)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	var buf bytes.Buffer
	require.NoError(t, e.ExportPDF(paragraphs(1), &buf))
	assert.NotZero(t, buf.Len())

	assert.Error(t, e.ConvertFile(filepath.Join(dir, "contract.exe"), pdfOut))
}
