package html

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gompdf/pagedit/internal/document"
	"golang.org/x/net/html"
)

// PageBreakStyle is the inline style carried by every serialized marker
const PageBreakStyle = "page-break-before: always; break-before: page; height: 0; border: none; margin: 0; padding: 0; display: block;"

// FromBlock converts a document node into an HTML element tree
func FromBlock(n *document.Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Type {
	case document.TypeParagraph:
		return withChildren(NewElement("p", alignAttrs(n)...), n.Content)
	case document.TypeHeading:
		return withChildren(NewElement(fmt.Sprintf("h%d", clampLevel(n.Level())), alignAttrs(n)...), n.Content)
	case document.TypeBulletList:
		return withChildren(NewElement("ul"), n.Content)
	case document.TypeOrderedList:
		var attrs []html.Attribute
		if start := attrValue(n, "start"); start != "" && start != "1" {
			attrs = append(attrs, html.Attribute{Key: "start", Val: start})
		}
		return withChildren(NewElement("ol", attrs...), n.Content)
	case document.TypeListItem:
		return withChildren(NewElement("li"), n.Content)
	case document.TypeBlockquote:
		return withChildren(NewElement("blockquote"), n.Content)
	case document.TypeCodeBlock:
		pre := NewElement("pre")
		code := NewElement("code")
		code.AppendChild(NewTextNode(n.TextContent()))
		pre.AppendChild(code)
		return pre
	case document.TypeHorizontalRule:
		return NewElement("hr")
	case document.TypeImage:
		var attrs []html.Attribute
		for _, key := range []string{"src", "alt", "title", "width", "height"} {
			if v := attrValue(n, key); v != "" {
				attrs = append(attrs, html.Attribute{Key: key, Val: v})
			}
		}
		return NewElement("img", attrs...)
	case document.TypeHardBreak:
		return NewElement("br")
	case document.TypeText:
		return fromText(n)
	case document.TypePageBreak:
		attrs := []html.Attribute{{Key: "data-page-break", Val: "true"}}
		if n.IsManualBreak() {
			attrs = append(attrs, html.Attribute{Key: document.AttrManualBreak, Val: "true"})
		} else {
			attrs = append(attrs, html.Attribute{Key: document.AttrAutoBreak, Val: "true"})
		}
		attrs = append(attrs, html.Attribute{Key: "style", Val: PageBreakStyle})
		return NewElement("div", attrs...)
	}
	// unknown node types keep their content inside a neutral container
	return withChildren(NewElement("div"), n.Content)
}

// FromDocument converts every top-level block of d
func FromDocument(d *document.Document) []*Node {
	if d == nil {
		return nil
	}
	out := make([]*Node, 0, d.Len())
	for _, b := range d.Blocks() {
		out = append(out, FromBlock(b))
	}
	return out
}

// RenderDocument serializes the document content to an HTML fragment
func RenderDocument(d *document.Document) (string, error) {
	var buf bytes.Buffer
	if err := RenderNodes(&buf, FromDocument(d)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderBlock serializes a single block to an HTML fragment
func RenderBlock(n *document.Node) (string, error) {
	var buf bytes.Buffer
	if err := RenderNode(&buf, FromBlock(n)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func withChildren(el *Node, content []*document.Node) *Node {
	for _, c := range content {
		el.AppendChild(FromBlock(c))
	}
	return el
}

// fromText wraps a text node in one element per mark, outermost first
func fromText(n *document.Node) *Node {
	var outer, inner *Node
	wrap := func(el *Node) {
		if inner == nil {
			outer = el
		} else {
			inner.AppendChild(el)
		}
		inner = el
	}
	for _, m := range n.Marks {
		switch m.Type {
		case document.MarkBold:
			wrap(NewElement("strong"))
		case document.MarkItalic:
			wrap(NewElement("em"))
		case document.MarkUnderline:
			wrap(NewElement("u"))
		case document.MarkStrike:
			wrap(NewElement("s"))
		case document.MarkCode:
			wrap(NewElement("code"))
		case document.MarkLink:
			href, _ := m.Attrs["href"].(string)
			wrap(NewElement("a", html.Attribute{Key: "href", Val: href}))
		}
	}
	txt := NewTextNode(n.Text)
	if inner == nil {
		return txt
	}
	inner.AppendChild(txt)
	return outer
}

func alignAttrs(n *document.Node) []html.Attribute {
	align := n.AttrString("textAlign")
	if align == "" || align == "left" {
		return nil
	}
	return []html.Attribute{{Key: "style", Val: "text-align: " + align}}
}

func attrValue(n *document.Node, key string) string {
	switch v := n.Attrs[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func clampLevel(l int) int {
	return max(1, min(l, 6))
}
