package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/gompdf/pagedit/internal/document"
)

// TextParser handles plain text files. Blank lines separate paragraphs and
// single newlines become hard breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []*document.Node
	var lines []string

	flush := func() {
		if len(lines) == 0 {
			return
		}
		var inline []*document.Node
		for i, line := range lines {
			if i > 0 {
				inline = append(inline, &document.Node{Type: document.TypeHardBreak})
			}
			inline = append(inline, document.NewText(line))
		}
		blocks = append(blocks, document.NewParagraph(inline...))
		lines = nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		// form feed is the plain-text page break
		if strings.Trim(line, " \t") == "\f" {
			flush()
			blocks = append(blocks, document.NewManualBreak())
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return document.New(blocks...), nil
}
