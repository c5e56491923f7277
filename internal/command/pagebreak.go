// Package command holds editing commands applied to documents.
package command

import (
	"fmt"

	"github.com/gompdf/pagedit/internal/document"
)

// InsertManualBreak inserts a manual page-break marker at the selection,
// replacing any selected content, and returns the cursor placed right
// after the new marker.
//
// A selection end inside a paragraph, heading or code block splits that
// block. An end inside any other block moves out of it: the start of the
// selection to the end of its block and the end of the selection to the
// start of its block.
func InsertManualBreak(doc *document.Document, sel document.Selection) (document.Selection, error) {
	if doc == nil {
		return sel, document.ErrNoDocument
	}
	sel = sel.Clamp(doc.Size())
	from, to := sel.From(), sel.To()

	fromIdx, fromStart := doc.BlockAt(from)
	toIdx, toStart := doc.BlockAt(to)

	var left, right *document.Node
	repFrom, repTo := from, to

	if b := doc.Block(fromIdx); b != nil && from > fromStart {
		if b.IsTextblock() {
			left = sliceTextblock(b, 0, from-fromStart-1)
			repFrom = fromStart
		} else {
			repFrom = fromStart + b.Size()
		}
	}
	if b := doc.Block(toIdx); b != nil && to > toStart {
		if b.IsTextblock() {
			right = sliceTextblock(b, to-toStart-1, b.ContentSize())
			repTo = toStart + b.Size()
		} else {
			repTo = toStart
		}
	}
	if repTo < repFrom {
		repTo = repFrom
	}
	// a split at the very edge of a block leaves nothing on that side
	if left != nil && left.ContentSize() == 0 {
		left = nil
	}
	if right != nil && right.ContentSize() == 0 {
		right = nil
	}

	nodes := make([]*document.Node, 0, 3)
	if left != nil {
		nodes = append(nodes, left)
	}
	nodes = append(nodes, document.NewManualBreak())
	if right != nil {
		nodes = append(nodes, right)
	}

	if err := doc.Tx().Replace(repFrom, repTo, nodes...).Apply(); err != nil {
		return sel, fmt.Errorf("insert page break: %w", err)
	}

	cursor := repFrom + 1
	if left != nil {
		cursor += left.Size()
	}
	return document.Cursor(cursor), nil
}

// sliceTextblock returns a copy of b holding the inline content between the
// content offsets from and to.
func sliceTextblock(b *document.Node, from, to int) *document.Node {
	out := b.Clone()
	out.Content = nil

	pos := 0
	for _, c := range b.Content {
		size := c.Size()
		start, end := pos, pos+size
		pos = end
		if end <= from || start >= to {
			continue
		}
		if c.Type != document.TypeText {
			out.Content = append(out.Content, c.Clone())
			continue
		}
		lo := max(from, start) - start
		hi := min(to, end) - start
		piece := c.Clone()
		piece.Text = runeSlice(c.Text, lo, hi)
		out.Content = append(out.Content, piece)
	}
	return out
}

func runeSlice(s string, from, to int) string {
	r := []rune(s)
	return string(r[from:to])
}
