package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlatRules(t *testing.T) {
	sheet, err := NewParser().ParseString(`
		/* headings */
		h1, h2 { font-size: 2em; margin: 0 0 12pt 0 }
		.document-export p { line-height: 1.6 !important; }
	`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 2)

	assert.Equal(t, []string{"h1", "h2"}, sheet.Rules[0].Selectors)
	v, ok := sheet.Rules[0].Get("margin")
	require.True(t, ok)
	assert.Equal(t, "0 0 12pt 0", v)

	assert.Equal(t, []string{".document-export p"}, sheet.Rules[1].Selectors)
	assert.True(t, sheet.Rules[1].Declarations[0].Important)
	assert.Equal(t, "1.6", sheet.Rules[1].Declarations[0].Value)
}

func TestParseNestedAtRule(t *testing.T) {
	sheet, err := NewParser().ParseString(`
		@page {
			size: A4;
			margin: 2cm;
			@top-center { content: "Legal; Document"; color: #666; }
			@bottom-center { content: "Page " counter(page) " of " counter(pages); }
		}
	`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1)

	page := sheet.Find("@page")
	require.NotNil(t, page)
	size, _ := page.Get("size")
	assert.Equal(t, "A4", size)
	require.Len(t, page.Declarations, 2)
	require.Len(t, page.Rules, 2)

	top := page.Rules[0]
	assert.Equal(t, []string{"@top-center"}, top.Selectors)
	content, _ := top.Get("content")
	assert.Equal(t, `"Legal; Document"`, content)

	bottom, _ := page.Rules[1].Get("content")
	assert.Equal(t, `"Page " counter(page) " of " counter(pages)`, bottom)
}

func TestSerializeReparses(t *testing.T) {
	sheet := &Stylesheet{Rules: []*Rule{
		{
			Selectors:    []string{"@page"},
			Declarations: []*Declaration{{Property: "size", Value: "A4"}},
			Rules: []*Rule{{
				Selectors:    []string{"@top-center"},
				Declarations: []*Declaration{{Property: "content", Value: Quote(`Say "hi"`)}},
			}},
		},
		{
			Selectors:    []string{"[data-page-break]"},
			Declarations: []*Declaration{{Property: "break-before", Value: "page", Important: true}},
		},
	}}

	out := sheet.String()
	assert.Contains(t, out, "break-before: page !important;")
	assert.Contains(t, out, `content: "Say \"hi\"";`)

	again, err := NewParser().ParseString(out)
	require.NoError(t, err)
	require.Len(t, again.Rules, 2)
	require.Len(t, again.Rules[0].Rules, 1)
	v, _ := again.Rules[0].Rules[0].Get("content")
	assert.Equal(t, `"Say \"hi\""`, v)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a\\b"`, Quote(`a\b`))
	assert.Equal(t, `"plain"`, Quote("plain"))
}
