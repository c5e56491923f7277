package style

import (
	"github.com/gompdf/pagedit/internal/parser/css"
)

// ContentCSS is the typography the editor and the exported page share.
// Measurement uses it so that heights match what is printed.
const ContentCSS = `
body { font-family: 'Times New Roman', serif; font-size: 12pt; line-height: 1.6; }
p { margin: 0 0 12pt 0; }
h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
h2 { font-size: 1.5em; margin: 0.83em 0; font-weight: bold; }
h3 { font-size: 1.17em; margin: 1em 0; font-weight: bold; }
h4 { margin: 1.33em 0; font-weight: bold; }
h5 { font-size: 0.83em; margin: 1.67em 0; font-weight: bold; }
h6 { font-size: 0.67em; margin: 2.33em 0; font-weight: bold; }
ul, ol { margin: 0 0 12pt 0; padding-left: 24pt; }
li p { margin: 0 0 4pt 0; }
blockquote { margin: 0 0 12pt 0; padding-left: 12pt; border-left: 3px solid #ddd; }
pre { font-family: 'Courier New', monospace; font-size: 10pt; line-height: 1.4; white-space: pre; margin: 0 0 12pt 0; padding: 8pt; }
hr { margin: 12pt 0; border: none; border-top: 1px solid #ccc; }
img { margin: 0 0 12pt 0; }
b, strong { font-weight: bold; }
i, em { font-style: italic; }
code { font-family: 'Courier New', monospace; }
`

// ContentStylesheet returns ContentCSS parsed
func ContentStylesheet() *css.Stylesheet {
	sheet, err := css.NewParser().ParseString(ContentCSS)
	if err != nil {
		return &css.Stylesheet{}
	}
	return sheet
}
