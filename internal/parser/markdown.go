package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// pageBreakComment in a Markdown source forces a manual page break.
const pageBreakComment = "<!-- pagebreak -->"

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	root := md.Parser().Parse(text.NewReader(src))

	return document.New(markdownBlocks(root, src)...), nil
}

func markdownBlocks(parent ast.Node, src []byte) []*document.Node {
	var out []*document.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, markdownBlock(n, src)...)
	}
	return out
}

func markdownBlock(n ast.Node, src []byte) []*document.Node {
	switch node := n.(type) {
	case *ast.Heading:
		return []*document.Node{document.NewHeading(node.Level, markdownInline(node, src, nil)...)}
	case *ast.Paragraph, *ast.TextBlock:
		// a paragraph holding a single image is an image block
		if img := loneImage(node, src); img != nil {
			return []*document.Node{img}
		}
		inline := markdownInline(node, src, nil)
		if len(inline) == 0 {
			return nil
		}
		return []*document.Node{document.NewParagraph(inline...)}
	case *ast.List:
		list := &document.Node{Type: document.TypeBulletList}
		if node.IsOrdered() {
			list.Type = document.TypeOrderedList
			if node.Start > 1 {
				list.Attrs = map[string]any{"start": node.Start}
			}
		}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			content := markdownBlocks(item, src)
			if len(content) == 0 {
				content = []*document.Node{document.NewParagraph()}
			}
			list.Content = append(list.Content, &document.Node{Type: document.TypeListItem, Content: content})
		}
		return []*document.Node{list}
	case *ast.Blockquote:
		content := markdownBlocks(node, src)
		if len(content) == 0 {
			content = []*document.Node{document.NewParagraph()}
		}
		return []*document.Node{{Type: document.TypeBlockquote, Content: content}}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		code := strings.TrimSuffix(string(blockLines(n, src)), "\n")
		block := &document.Node{Type: document.TypeCodeBlock}
		if fenced, ok := node.(*ast.FencedCodeBlock); ok {
			if lang := fenced.Language(src); len(lang) > 0 {
				block.Attrs = map[string]any{"language": string(lang)}
			}
		}
		if code != "" {
			block.Content = []*document.Node{document.NewText(code)}
		}
		return []*document.Node{block}
	case *ast.ThematicBreak:
		return []*document.Node{{Type: document.TypeHorizontalRule}}
	case *ast.HTMLBlock:
		if strings.EqualFold(strings.TrimSpace(string(blockLines(n, src))), pageBreakComment) {
			return []*document.Node{document.NewManualBreak()}
		}
		return nil
	}
	return markdownBlocks(n, src)
}

func markdownInline(parent ast.Node, src []byte, marks []document.Mark) []*document.Node {
	var out []*document.Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			if s := string(node.Value(src)); s != "" {
				out = append(out, document.NewText(s, copyMarks(marks)...))
			}
			if node.HardLineBreak() {
				out = append(out, &document.Node{Type: document.TypeHardBreak})
			} else if node.SoftLineBreak() {
				out = append(out, document.NewText(" ", copyMarks(marks)...))
			}
		case *ast.String:
			out = append(out, document.NewText(string(node.Value), copyMarks(marks)...))
		case *ast.CodeSpan:
			out = append(out, markdownInline(node, src, withMark(marks, document.Mark{Type: document.MarkCode}))...)
		case *ast.Emphasis:
			mark := document.Mark{Type: document.MarkItalic}
			if node.Level >= 2 {
				mark.Type = document.MarkBold
			}
			out = append(out, markdownInline(node, src, withMark(marks, mark))...)
		case *extast.Strikethrough:
			out = append(out, markdownInline(node, src, withMark(marks, document.Mark{Type: document.MarkStrike}))...)
		case *ast.Link:
			link := document.Mark{Type: document.MarkLink, Attrs: map[string]any{"href": string(node.Destination)}}
			out = append(out, markdownInline(node, src, withMark(marks, link))...)
		case *ast.AutoLink:
			url := string(node.URL(src))
			link := document.Mark{Type: document.MarkLink, Attrs: map[string]any{"href": url}}
			out = append(out, document.NewText(url, withMark(marks, link)...))
		default:
			// inline images have no place in a text run and keep their alt text
			out = append(out, markdownInline(node, src, marks)...)
		}
	}
	return mergeText(out)
}

func loneImage(n ast.Node, src []byte) *document.Node {
	img, ok := n.FirstChild().(*ast.Image)
	if !ok || img.NextSibling() != nil {
		return nil
	}
	attrs := map[string]any{"src": string(img.Destination)}
	if alt := plainText(img, src); alt != "" {
		attrs["alt"] = alt
	}
	if len(img.Title) > 0 {
		attrs["title"] = string(img.Title)
	}
	return &document.Node{Type: document.TypeImage, Attrs: attrs}
}

func plainText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			continue
		}
		buf.WriteString(plainText(c, src))
	}
	return buf.String()
}

func blockLines(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.Bytes()
}

func withMark(marks []document.Mark, m document.Mark) []document.Mark {
	return append(copyMarks(marks), m)
}

func copyMarks(marks []document.Mark) []document.Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]document.Mark, len(marks))
	copy(out, marks)
	return out
}

// mergeText joins adjacent text nodes carrying the same marks.
func mergeText(nodes []*document.Node) []*document.Node {
	var out []*document.Node
	for _, n := range nodes {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.Type == document.TypeText && n.Type == document.TypeText && sameMarkTypes(last.Marks, n.Marks) {
				last.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func sameMarkTypes(a, b []document.Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Attrs["href"] != b[i].Attrs["href"] {
			return false
		}
	}
	return true
}
