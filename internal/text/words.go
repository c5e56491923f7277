// Package text provides the small amount of text processing the editor
// needs: word counting, direction detection and greedy line wrapping.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in Unicode NFC form
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Words splits s into whitespace separated words
func Words(s string) []string {
	return strings.FieldsFunc(Normalize(s), unicode.IsSpace)
}

// WordCount counts whitespace separated words
func WordCount(s string) int {
	return len(Words(s))
}

// WidthFunc returns the rendered width of a string
type WidthFunc func(s string) float64

// Wrap breaks text into lines no wider than maxWidth using a greedy
// word-fitting pass. Explicit newlines always start a new line and a word
// wider than maxWidth is placed on a line of its own. Empty input yields one
// empty line so that blank paragraphs still take up a line.
func Wrap(s string, maxWidth float64, width WidthFunc) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, wrapParagraph(para, maxWidth, width)...)
	}
	return lines
}

func wrapParagraph(s string, maxWidth float64, width WidthFunc) []string {
	words := Words(s)
	if len(words) == 0 {
		return []string{""}
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}

	space := width(" ")
	var lines []string
	var line strings.Builder
	lineWidth := 0.0

	for _, w := range words {
		ww := width(w)
		if line.Len() > 0 && lineWidth+space+ww > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
			lineWidth += space
		}
		line.WriteString(w)
		lineWidth += ww
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
