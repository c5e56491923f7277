package style

import (
	"testing"

	"github.com/gompdf/pagedit/internal/parser/css"
	"github.com/gompdf/pagedit/internal/parser/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"
)

func tree() (body, ul, li, p, strong *html.Node) {
	body = html.NewElement("body")
	ul = html.NewElement("ul", xhtml.Attribute{Key: "class", Val: "terms"})
	li = html.NewElement("li")
	p = html.NewElement("p", xhtml.Attribute{Key: "style", Val: "text-align: center"})
	strong = html.NewElement("strong")
	strong.AppendChild(html.NewTextNode("x"))
	p.AppendChild(strong)
	li.AppendChild(p)
	ul.AppendChild(li)
	body.AppendChild(ul)
	return
}

func TestComputeStylesInheritance(t *testing.T) {
	body, ul, _, p, strong := tree()
	styles := NewStyleEngine().ComputeStyles(body)

	assert.InDelta(t, 16, styles[body].FontSize(), 0.001)
	assert.InDelta(t, 25.6, styles[body].LineHeight(), 0.001)

	// li p wins over p for the margin
	top, _, bottom, _ := styles[p].Box("margin", 642)
	assert.InDelta(t, 0, top, 0.001)
	assert.InDelta(t, 4*96.0/72.0, bottom, 0.001)

	_, _, _, left := styles[ul].Box("padding", 642)
	assert.InDelta(t, 32, left, 0.001)

	assert.Equal(t, "center", styles[p].Get("text-align"))
	assert.Equal(t, "center", styles[strong].Get("text-align"), "text-align inherits")
	assert.Equal(t, "bold", styles[strong].Get("font-weight"))
	assert.Equal(t, "'Times New Roman', serif", styles[strong].Get("font-family"))
	assert.Equal(t, "", styles[p].Get("padding"), "padding does not inherit")
}

func TestRelativeFontSizeDoesNotCompound(t *testing.T) {
	body := html.NewElement("body")
	h1 := html.NewElement("h1")
	em := html.NewElement("em")
	h1.AppendChild(em)
	body.AppendChild(h1)

	styles := NewStyleEngine().ComputeStyles(body)
	assert.InDelta(t, 32, styles[h1].FontSize(), 0.001)
	assert.InDelta(t, 32, styles[em].FontSize(), 0.001)

	top, _, _, _ := styles[h1].Box("margin", 0)
	assert.InDelta(t, 0.67*32, top, 0.001)
}

func TestAuthorStylesheetAndSpecificity(t *testing.T) {
	body, ul, li, p, _ := tree()
	sheet, err := css.NewParser().ParseString(`
		@page { size: A4; }
		.terms p { margin: 1px; }
		p { margin: 2px; }
		[data-page-break] { display: block; }
		li:first-child { color: red; }
	`)
	require.NoError(t, err)

	e := NewStyleEngine()
	e.AddStylesheet(sheet)
	styles := e.ComputeStyles(body)

	top, _, _, _ := styles[p].Box("margin", 0)
	assert.InDelta(t, 1, top, 0.001, "class selector beats element selector")
	assert.Equal(t, "", styles[li].Get("color"), "pseudo-classes never match")
	assert.Equal(t, "", styles[ul].Get("display"))

	marker := html.NewElement("div", xhtml.Attribute{Key: "data-page-break", Val: "true"})
	body.AppendChild(marker)
	styles = e.ComputeStyles(body)
	assert.Equal(t, "block", styles[marker].Get("display"))
}

func TestBorderWidths(t *testing.T) {
	s := ComputedStyle{
		"border":      {Value: "1px solid #ccc"},
		"border-left": {Value: "3px solid #ddd"},
		"border-top":  {Value: "none"},
	}
	top, right, bottom, left := s.BorderWidths()
	assert.Equal(t, 0.0, top)
	assert.Equal(t, 1.0, right)
	assert.Equal(t, 1.0, bottom)
	assert.Equal(t, 3.0, left)
}

func TestLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12pt", 16, true},
		{"2cm", 2 * 96 / 2.54, true},
		{"1in", 96, true},
		{"1.5em", 24, true},
		{"2rem", 32, true},
		{"50%", 321, true},
		{"10", 10, true},
		{"auto", 0, true},
		{"medium", 16, true},
		{"wide", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := Length(tt.in, 16, 642)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 0.0001, tt.in)
	}
}
