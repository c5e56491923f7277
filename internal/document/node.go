package document

import (
	"strings"
	"unicode/utf8"
)

// NodeType identifies the kind of a document node
type NodeType string

// Node types understood by the editor. Names match the TipTap schema so that
// editor JSON can be loaded without translation.
const (
	TypeDoc            NodeType = "doc"
	TypeParagraph      NodeType = "paragraph"
	TypeHeading        NodeType = "heading"
	TypeBulletList     NodeType = "bulletList"
	TypeOrderedList    NodeType = "orderedList"
	TypeListItem       NodeType = "listItem"
	TypeBlockquote     NodeType = "blockquote"
	TypeCodeBlock      NodeType = "codeBlock"
	TypeHorizontalRule NodeType = "horizontalRule"
	TypeImage          NodeType = "image"
	TypeHardBreak      NodeType = "hardBreak"
	TypeText           NodeType = "text"
	TypePageBreak      NodeType = "pageBreak"
)

// Page-break marker attributes
const (
	AttrManualBreak = "data-manual-page-break"
	AttrAutoBreak   = "data-auto-page-break"
)

// Mark types
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkUnderline = "underline"
	MarkStrike    = "strike"
	MarkCode      = "code"
	MarkLink      = "link"
)

// Mark represents inline formatting applied to a text node
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is a single node of the document tree
type Node struct {
	Type    NodeType       `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// NewText creates a text node
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: text, Marks: marks}
}

// NewParagraph creates a paragraph holding the given inline nodes
func NewParagraph(inline ...*Node) *Node {
	return &Node{Type: TypeParagraph, Content: inline}
}

// NewHeading creates a heading of the given level (1-6)
func NewHeading(level int, inline ...*Node) *Node {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return &Node{Type: TypeHeading, Attrs: map[string]any{"level": level}, Content: inline}
}

// NewManualBreak creates a page-break marker owned by the user
func NewManualBreak() *Node {
	return &Node{Type: TypePageBreak, Attrs: map[string]any{AttrManualBreak: true}}
}

// NewAutoBreak creates a page-break marker owned by the pagination engine
func NewAutoBreak() *Node {
	return &Node{Type: TypePageBreak, Attrs: map[string]any{AttrAutoBreak: true}}
}

// IsPageBreak reports whether n is a page-break marker
func (n *Node) IsPageBreak() bool {
	return n != nil && n.Type == TypePageBreak
}

// IsManualBreak reports whether n is a marker tagged manual
func (n *Node) IsManualBreak() bool {
	return n.IsPageBreak() && attrTrue(n.Attrs[AttrManualBreak])
}

// IsAutoBreak reports whether n is an automatic marker. Markers without the
// manual tag are treated as automatic.
func (n *Node) IsAutoBreak() bool {
	return n.IsPageBreak() && !n.IsManualBreak()
}

// IsLeaf reports whether the node has no content of its own
func (n *Node) IsLeaf() bool {
	switch n.Type {
	case TypeText, TypeHardBreak, TypeImage, TypeHorizontalRule, TypePageBreak:
		return true
	}
	return false
}

// IsTextblock reports whether the node directly holds inline content
func (n *Node) IsTextblock() bool {
	switch n.Type {
	case TypeParagraph, TypeHeading, TypeCodeBlock:
		return true
	}
	return false
}

// IsInline reports whether the node lives inside a textblock
func (n *Node) IsInline() bool {
	return n.Type == TypeText || n.Type == TypeHardBreak
}

// Size returns the number of positions the node occupies.
// Text counts one position per rune, leaves count one and every other node
// counts its content plus an opening and a closing token.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	if n.Type == TypeText {
		return utf8.RuneCountInString(n.Text)
	}
	if n.IsLeaf() {
		return 1
	}
	return 2 + n.ContentSize()
}

// ContentSize returns the combined size of the node's children
func (n *Node) ContentSize() int {
	size := 0
	for _, c := range n.Content {
		size += c.Size()
	}
	return size
}

// Level returns the heading level, defaulting to 1
func (n *Node) Level() int {
	if n == nil || n.Attrs == nil {
		return 1
	}
	switch v := n.Attrs["level"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 1
}

// AttrString returns a string attribute or "" when absent
func (n *Node) AttrString(key string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	if s, ok := n.Attrs[key].(string); ok {
		return s
	}
	return ""
}

// TextContent returns the concatenated text of the node and its descendants
func (n *Node) TextContent() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Type {
	case TypeText:
		b.WriteString(n.Text)
		return
	case TypeHardBreak:
		b.WriteByte('\n')
		return
	}
	for i, c := range n.Content {
		if i > 0 && !c.IsInline() && !n.IsTextblock() {
			b.WriteByte('\n')
		}
		c.writeText(b)
	}
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type: n.Type,
		Text: n.Text,
	}
	if n.Attrs != nil {
		c.Attrs = make(map[string]any, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if len(n.Marks) > 0 {
		c.Marks = make([]Mark, len(n.Marks))
		copy(c.Marks, n.Marks)
	}
	if len(n.Content) > 0 {
		c.Content = make([]*Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = child.Clone()
		}
	}
	return c
}

// HasMark reports whether the node carries a mark of the given type
func (n *Node) HasMark(markType string) bool {
	for _, m := range n.Marks {
		if m.Type == markType {
			return true
		}
	}
	return false
}

func attrTrue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == ""
	}
	return false
}
