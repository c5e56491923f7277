package html

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser represents an HTML parser
type Parser struct{}

// Node represents an HTML node in the document tree
type Node struct {
	Type        html.NodeType
	Data        string
	Attr        []html.Attribute
	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node
}

// Document represents a parsed HTML document
type Document struct {
	Root *Node
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(content string) (*Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := convertNode(node, nil)
	return &Document{Root: root}, nil
}

// ParseFragment parses an HTML fragment in the context of a <body> element
func (p *Parser) ParseFragment(r io.Reader) ([]*Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, convertNode(n, nil))
	}
	return out, nil
}

// convertNode converts an html.Node to our Node structure
func convertNode(n *html.Node, parent *Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{
		Type:   n.Type,
		Data:   n.Data,
		Attr:   n.Attr,
		Parent: parent,
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		node.AppendChild(convertNode(c, node))
	}

	return node
}

// NewElement creates a detached element node
func NewElement(tag string, attrs ...html.Attribute) *Node {
	return &Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

// NewTextNode creates a detached text node
func NewTextNode(text string) *Node {
	return &Node{Type: html.TextNode, Data: text}
}

// AppendChild adds child as the last child of n
func (n *Node) AppendChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	child.PrevSibling = n.LastChild
	child.NextSibling = nil
	if n.LastChild != nil {
		n.LastChild.NextSibling = child
	} else {
		n.FirstChild = child
	}
	n.LastChild = child
}

// GetAttr returns the value of the named attribute
func (n *Node) GetAttr(key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// TextContent returns the concatenated text of n and its descendants
func (n *Node) TextContent() string {
	var buf strings.Builder
	var walk func(*Node)
	walk = func(c *Node) {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return buf.String()
}

// Render renders the document back to HTML
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := RenderNode(&buf, d.Root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderNode renders a node and all of its descendants to HTML
func RenderNode(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	return html.Render(w, toNetNode(n))
}

// RenderNodes renders a sequence of sibling nodes
func RenderNodes(w io.Writer, nodes []*Node) error {
	for _, n := range nodes {
		if err := RenderNode(w, n); err != nil {
			return err
		}
	}
	return nil
}

// toNetNode converts our Node tree back to x/net/html nodes
func toNetNode(n *Node) *html.Node {
	node := &html.Node{
		Type: n.Type,
		Data: n.Data,
		Attr: n.Attr,
	}
	if n.Type == html.ElementNode {
		node.DataAtom = atom.Lookup([]byte(n.Data))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		node.AppendChild(toNetNode(c))
	}
	return node
}
