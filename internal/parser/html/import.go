package html

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gompdf/pagedit/internal/document"
	"golang.org/x/net/html"
)

// Import parses a full HTML page or fragment into a document. Content is
// taken from <body>; a <div data-page-break> becomes a page-break marker.
func (p *Parser) Import(r io.Reader) (*document.Document, error) {
	doc, err := p.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := findElement(doc.Root, "body")
	if root == nil {
		root = doc.Root
	}
	// exported pages wrap their content in a container
	if c := findClass(root, "document-export"); c != nil {
		root = c
	}
	return document.New(importBlocks(root)...), nil
}

// importBlocks converts the children of n into block nodes. Runs of loose
// inline content are gathered into paragraphs.
func importBlocks(n *Node) []*document.Node {
	var blocks []*document.Node
	var loose []*document.Node

	flush := func() {
		if len(loose) == 0 {
			return
		}
		if !allBlank(loose) {
			blocks = append(blocks, document.NewParagraph(loose...))
		}
		loose = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlockTag(c.Data) {
			flush()
			if b := importBlock(c); b != nil {
				blocks = append(blocks, b...)
			}
			continue
		}
		if c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style" || c.Data == "head") {
			continue
		}
		loose = append(loose, importInline(c, nil)...)
	}
	flush()
	return blocks
}

func importBlock(n *Node) []*document.Node {
	tag := strings.ToLower(n.Data)
	switch tag {
	case "p":
		return []*document.Node{withAlign(document.NewParagraph(importInlineChildren(n, nil)...), n)}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(tag[1:])
		return []*document.Node{withAlign(document.NewHeading(level, importInlineChildren(n, nil)...), n)}
	case "ul", "ol":
		list := &document.Node{Type: document.TypeBulletList}
		if tag == "ol" {
			list.Type = document.TypeOrderedList
			if start, ok := n.GetAttr("start"); ok {
				if v, err := strconv.Atoi(start); err == nil {
					list.Attrs = map[string]any{"start": v}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && strings.EqualFold(c.Data, "li") {
				list.Content = append(list.Content, importListItem(c))
			}
		}
		return []*document.Node{list}
	case "li":
		return []*document.Node{importListItem(n)}
	case "blockquote":
		content := importBlocks(n)
		if len(content) == 0 {
			content = []*document.Node{document.NewParagraph()}
		}
		return []*document.Node{{Type: document.TypeBlockquote, Content: content}}
	case "pre":
		text := strings.TrimSuffix(n.TextContent(), "\n")
		node := &document.Node{Type: document.TypeCodeBlock}
		if text != "" {
			node.Content = []*document.Node{document.NewText(text)}
		}
		return []*document.Node{node}
	case "hr":
		return []*document.Node{{Type: document.TypeHorizontalRule}}
	case "img":
		return []*document.Node{importImage(n)}
	case "div", "section", "article", "main", "header", "footer":
		if _, ok := n.GetAttr("data-page-break"); ok {
			return []*document.Node{importMarker(n)}
		}
		return importBlocks(n)
	}
	return importBlocks(n)
}

func importMarker(n *Node) *document.Node {
	if v, ok := n.GetAttr(document.AttrManualBreak); ok && v != "false" {
		return document.NewManualBreak()
	}
	return document.NewAutoBreak()
}

func importListItem(n *Node) *document.Node {
	content := importBlocks(n)
	if len(content) == 0 {
		content = []*document.Node{document.NewParagraph()}
	}
	return &document.Node{Type: document.TypeListItem, Content: content}
}

func importImage(n *Node) *document.Node {
	attrs := map[string]any{}
	for _, key := range []string{"src", "alt", "title"} {
		if v, ok := n.GetAttr(key); ok {
			attrs[key] = v
		}
	}
	for _, key := range []string{"width", "height"} {
		if v, ok := n.GetAttr(key); ok {
			if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
				attrs[key] = f
			}
		}
	}
	return &document.Node{Type: document.TypeImage, Attrs: attrs}
}

func importInlineChildren(n *Node, marks []document.Mark) []*document.Node {
	var out []*document.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, importInline(c, marks)...)
	}
	return mergeText(out)
}

func importInline(n *Node, marks []document.Mark) []*document.Node {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if text == "" {
			return nil
		}
		return []*document.Node{document.NewText(text, copyMarks(marks)...)}
	case html.ElementNode:
	default:
		return nil
	}

	switch strings.ToLower(n.Data) {
	case "br":
		return []*document.Node{{Type: document.TypeHardBreak}}
	case "strong", "b":
		marks = append(copyMarks(marks), document.Mark{Type: document.MarkBold})
	case "em", "i":
		marks = append(copyMarks(marks), document.Mark{Type: document.MarkItalic})
	case "u":
		marks = append(copyMarks(marks), document.Mark{Type: document.MarkUnderline})
	case "s", "strike", "del":
		marks = append(copyMarks(marks), document.Mark{Type: document.MarkStrike})
	case "code":
		marks = append(copyMarks(marks), document.Mark{Type: document.MarkCode})
	case "a":
		href, _ := n.GetAttr("href")
		marks = append(copyMarks(marks), document.Mark{Type: document.MarkLink, Attrs: map[string]any{"href": href}})
	}
	return importInlineChildren(n, marks)
}

// mergeText joins adjacent text nodes that carry identical marks
func mergeText(nodes []*document.Node) []*document.Node {
	var out []*document.Node
	for _, n := range nodes {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.Type == document.TypeText && n.Type == document.TypeText && sameMarks(last.Marks, n.Marks) {
				last.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func sameMarks(a, b []document.Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type {
			return false
		}
		if fmt.Sprint(a[i].Attrs) != fmt.Sprint(b[i].Attrs) {
			return false
		}
	}
	return true
}

func copyMarks(marks []document.Mark) []document.Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]document.Mark, len(marks))
	copy(out, marks)
	return out
}

func withAlign(block *document.Node, n *Node) *document.Node {
	style, ok := n.GetAttr("style")
	if !ok {
		return block
	}
	for _, decl := range strings.Split(style, ";") {
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) == 2 && strings.TrimSpace(strings.ToLower(parts[0])) == "text-align" {
			if block.Attrs == nil {
				block.Attrs = map[string]any{}
			}
			block.Attrs["textAlign"] = strings.TrimSpace(parts[1])
		}
	}
	return block
}

func collapseSpace(s string) string {
	if strings.TrimSpace(s) == "" {
		if s == "" {
			return ""
		}
		return " "
	}
	fields := strings.Fields(s)
	out := strings.Join(fields, " ")
	if isSpaceByte(s[0]) {
		out = " " + out
	}
	if isSpaceByte(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func allBlank(nodes []*document.Node) bool {
	for _, n := range nodes {
		if n.Type != document.TypeText || strings.TrimSpace(n.Text) != "" {
			return false
		}
	}
	return true
}

func isBlockTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "blockquote",
		"pre", "hr", "img", "div", "section", "article", "main", "header", "footer", "table":
		return true
	}
	return false
}

func findElement(n *Node, tag string) *Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findClass(n *Node, class string) *Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode {
		if v, ok := n.GetAttr("class"); ok {
			for _, c := range strings.Fields(v) {
				if c == class {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}
