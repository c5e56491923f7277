// Package document holds the block-structured rich-text model that the
// pagination engine operates on. Positions follow the ProseMirror
// convention: position 0 is before the first top-level block and every block
// occupies Node.Size() positions.
package document

import (
	"errors"
	"strings"
)

// Sentinel errors returned by document operations.
var (
	// ErrNoDocument is returned when an operation needs a document and got nil.
	ErrNoDocument = errors.New("no document")

	// ErrInvalidPosition is returned when a position is not a top-level block
	// boundary of the document a transaction was built for.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrOverlappingSteps is returned when two deletions of one transaction
	// overlap or an insertion falls strictly inside a deleted range.
	ErrOverlappingSteps = errors.New("overlapping transaction steps")
)

// Document is an ordered sequence of top-level block nodes
type Document struct {
	blocks  []*Node
	version int
}

// New creates a document from top-level blocks
func New(blocks ...*Node) *Document {
	d := &Document{}
	for _, b := range blocks {
		if b != nil {
			d.blocks = append(d.blocks, b)
		}
	}
	return d
}

// FromNode creates a document from a "doc" root node
func FromNode(root *Node) *Document {
	if root == nil {
		return New()
	}
	return New(root.Content...)
}

// Root returns the document as a single "doc" node
func (d *Document) Root() *Node {
	return &Node{Type: TypeDoc, Content: d.Blocks()}
}

// Blocks returns the top-level blocks. The slice is a copy; the nodes are not.
func (d *Document) Blocks() []*Node {
	out := make([]*Node, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// Len returns the number of top-level blocks
func (d *Document) Len() int {
	return len(d.blocks)
}

// Block returns the i-th top-level block
func (d *Document) Block(i int) *Node {
	if i < 0 || i >= len(d.blocks) {
		return nil
	}
	return d.blocks[i]
}

// Version is incremented by every applied transaction
func (d *Document) Version() int {
	return d.version
}

// Size returns the total number of positions in the document content
func (d *Document) Size() int {
	size := 0
	for _, b := range d.blocks {
		size += b.Size()
	}
	return size
}

// ForEach calls fn for every top-level block with its start position.
// Iteration stops when fn returns false.
func (d *Document) ForEach(fn func(node *Node, pos int) bool) {
	pos := 0
	for _, b := range d.blocks {
		if !fn(b, pos) {
			return
		}
		pos += b.Size()
	}
}

// Marker is a page-break marker together with its start position
type Marker struct {
	Pos    int
	Manual bool
}

// Markers returns every page-break marker in document order
func (d *Document) Markers() []Marker {
	var out []Marker
	d.ForEach(func(n *Node, pos int) bool {
		if n.IsPageBreak() {
			out = append(out, Marker{Pos: pos, Manual: n.IsManualBreak()})
		}
		return true
	})
	return out
}

// BlockAt resolves pos to the index of the top-level block that contains it
// and the block's start position. A position on a boundary resolves to the
// block that starts there; the document end resolves to index Len().
func (d *Document) BlockAt(pos int) (index, start int) {
	start = 0
	for i, b := range d.blocks {
		end := start + b.Size()
		if pos < end {
			return i, start
		}
		start = end
	}
	return len(d.blocks), start
}

// IsBoundary reports whether pos sits between two top-level blocks
func (d *Document) IsBoundary(pos int) bool {
	if pos == 0 {
		return true
	}
	at := 0
	for _, b := range d.blocks {
		at += b.Size()
		if at == pos {
			return true
		}
		if at > pos {
			return false
		}
	}
	return false
}

// IsEmpty reports whether the document has no content worth exporting
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, b := range d.blocks {
		if b.IsPageBreak() {
			continue
		}
		if b.Type == TypeParagraph && strings.TrimSpace(b.TextContent()) == "" {
			continue
		}
		return false
	}
	return true
}

// Text returns the plain text of the document, one block per line
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.blocks))
	for _, b := range d.blocks {
		if b.IsPageBreak() {
			continue
		}
		parts = append(parts, b.TextContent())
	}
	return strings.Join(parts, "\n")
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	c := &Document{version: d.version, blocks: make([]*Node, len(d.blocks))}
	for i, b := range d.blocks {
		c.blocks[i] = b.Clone()
	}
	return c
}

// Selection is an anchor/head pair of positions; Head is the cursor
type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// Cursor creates an empty selection at pos
func Cursor(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// From returns the smaller end of the selection
func (s Selection) From() int {
	return min(s.Anchor, s.Head)
}

// To returns the larger end of the selection
func (s Selection) To() int {
	return max(s.Anchor, s.Head)
}

// Empty reports whether the selection is a plain cursor
func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

// Clamp limits the selection to [0, size]
func (s Selection) Clamp(size int) Selection {
	clamp := func(p int) int { return max(0, min(p, size)) }
	return Selection{Anchor: clamp(s.Anchor), Head: clamp(s.Head)}
}
