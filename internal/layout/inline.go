package layout

import (
	"strings"
	"unicode"

	"github.com/gompdf/pagedit/internal/parser/html"
	"github.com/gompdf/pagedit/internal/style"
	xhtml "golang.org/x/net/html"
)

// inlineRun is a piece of text sharing one computed style. A run with
// lineBreak set stands for a <br>.
type inlineRun struct {
	text      string
	style     style.ComputedStyle
	lineBreak bool
}

// LineBox is an anonymous block holding wrapped inline content
type LineBox struct {
	// Style is the style of the block that owns the lines
	Style  style.ComputedStyle
	Runs   []inlineRun
	Lines  int
	Width  float64
	Height float64

	measure textMeasure
}

// Layout wraps the runs greedily into lines no wider than availableWidth.
// Each line is as tall as the tallest line-height on it; a word wider than
// the line sits on a line of its own.
func (b *LineBox) Layout(availableWidth float64) error {
	b.Width = availableWidth
	b.Lines = 0
	b.Height = 0

	if b.Style.Get("white-space") == "pre" {
		return b.layoutPre()
	}

	lineWidth := 0.0
	lineHeight := 0.0
	pendingSpace := 0.0
	empty := true

	emit := func() {
		if lineHeight == 0 {
			lineHeight = b.Style.LineHeight()
		}
		b.Height += lineHeight
		b.Lines++
		lineWidth, lineHeight, pendingSpace = 0, 0, 0
		empty = true
	}

	for _, run := range b.Runs {
		if run.lineBreak {
			lineHeight = max(lineHeight, run.style.LineHeight())
			emit()
			continue
		}
		lh := run.style.LineHeight()
		for _, tok := range splitTokens(run.text) {
			if tok == " " {
				if !empty {
					w, err := b.measure(" ", run.style)
					if err != nil {
						return err
					}
					pendingSpace = w
				}
				continue
			}
			w, err := b.measure(tok, run.style)
			if err != nil {
				return err
			}
			if !empty && lineWidth+pendingSpace+w > availableWidth {
				emit()
			}
			if !empty {
				lineWidth += pendingSpace
			}
			lineWidth += w
			lineHeight = max(lineHeight, lh)
			pendingSpace = 0
			empty = false
		}
	}
	if !empty || b.Lines == 0 {
		emit()
	}
	return nil
}

// layoutPre counts preformatted lines without wrapping
func (b *LineBox) layoutPre() error {
	var text strings.Builder
	for _, run := range b.Runs {
		if run.lineBreak {
			text.WriteByte('\n')
			continue
		}
		text.WriteString(run.text)
	}
	b.Lines = strings.Count(strings.TrimSuffix(text.String(), "\n"), "\n") + 1
	b.Height = float64(b.Lines) * b.Style.LineHeight()
	return nil
}

func (b *LineBox) GetWidth() float64        { return b.Width }
func (b *LineBox) GetHeight() float64       { return b.Height }
func (b *LineBox) GetMarginTop() float64    { return 0 }
func (b *LineBox) GetMarginBottom() float64 { return 0 }
func (b *LineBox) GetNode() *html.Node      { return nil }

// collectInlineRuns flattens the inline content of n into styled runs.
// Whitespace collapses unless the owning block preserves it.
func collectInlineRuns(n *html.Node, styles map[*html.Node]style.ComputedStyle, inherited style.ComputedStyle, out *[]inlineRun) {
	switch n.Type {
	case xhtml.TextNode:
		txt := n.Data
		if inherited.Get("white-space") != "pre" {
			txt = normalizeWhitespace(txt)
		}
		if txt != "" {
			*out = append(*out, inlineRun{text: txt, style: inherited})
		}
		return
	case xhtml.ElementNode:
	default:
		return
	}

	st := inherited
	if s, ok := styles[n]; ok {
		st = s
	}
	if strings.EqualFold(n.Data, "br") {
		*out = append(*out, inlineRun{style: st, lineBreak: true})
		return
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		collectInlineRuns(ch, styles, st, out)
	}
}

// splitTokens splits text into words and single-space separators
func splitTokens(s string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			flush()
			if len(tokens) == 0 || tokens[len(tokens)-1] != " " {
				tokens = append(tokens, " ")
			}
			continue
		}
		cur = append(cur, r)
	}
	flush()
	return tokens
}

// normalizeWhitespace collapses runs of whitespace into a single space
// without trimming the ends.
func normalizeWhitespace(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return b.String()
}
