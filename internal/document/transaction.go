package document

import (
	"errors"
	"fmt"
	"sort"
)

// ErrStaleTransaction is returned when a transaction is applied to a document
// that changed after the transaction was created.
var ErrStaleTransaction = errors.New("document changed since transaction was created")

type stepKind int

const (
	stepInsert stepKind = iota
	stepDelete
)

// step is a single block-level change. Positions always refer to the
// document as it was when the transaction was created.
type step struct {
	kind  stepKind
	from  int
	to    int
	nodes []*Node
}

// Transaction batches block-level insertions and deletions so they can be
// applied atomically. Offsets are never shifted by earlier steps of the same
// transaction.
type Transaction struct {
	doc     *Document
	version int
	steps   []step
	meta    map[string]any
}

// Tx starts a transaction against the current state of the document
func (d *Document) Tx() *Transaction {
	tx := &Transaction{doc: d}
	if d != nil {
		tx.version = d.version
	}
	return tx
}

// Insert queues the insertion of nodes at pos
func (tx *Transaction) Insert(pos int, nodes ...*Node) *Transaction {
	if len(nodes) == 0 {
		return tx
	}
	tx.steps = append(tx.steps, step{kind: stepInsert, from: pos, to: pos, nodes: nodes})
	return tx
}

// Delete queues the removal of every block in [from, to)
func (tx *Transaction) Delete(from, to int) *Transaction {
	if from == to {
		return tx
	}
	tx.steps = append(tx.steps, step{kind: stepDelete, from: from, to: to})
	return tx
}

// Replace queues the removal of [from, to) and the insertion of nodes at from
func (tx *Transaction) Replace(from, to int, nodes ...*Node) *Transaction {
	return tx.Delete(from, to).Insert(from, nodes...)
}

// SetMeta attaches a metadata value to the transaction
func (tx *Transaction) SetMeta(key string, value any) *Transaction {
	if tx.meta == nil {
		tx.meta = make(map[string]any)
	}
	tx.meta[key] = value
	return tx
}

// Meta returns a metadata value
func (tx *Transaction) Meta(key string) any {
	if tx == nil || tx.meta == nil {
		return nil
	}
	return tx.meta[key]
}

// Empty reports whether the transaction has no steps
func (tx *Transaction) Empty() bool {
	return len(tx.steps) == 0
}

// Apply validates every step against the original document and then applies
// all of them at once. On error the document is left untouched.
func (tx *Transaction) Apply() error {
	d := tx.doc
	if d == nil {
		return ErrNoDocument
	}
	if d.version != tx.version {
		return ErrStaleTransaction
	}
	if len(tx.steps) == 0 {
		return nil
	}

	size := d.Size()
	var deletes []step
	inserts := make(map[int][]*Node)

	for _, s := range tx.steps {
		switch s.kind {
		case stepDelete:
			if s.from > s.to || s.from < 0 || s.to > size || !d.IsBoundary(s.from) || !d.IsBoundary(s.to) {
				return fmt.Errorf("delete %d..%d: %w", s.from, s.to, ErrInvalidPosition)
			}
			deletes = append(deletes, s)
		case stepInsert:
			if s.from < 0 || s.from > size || !d.IsBoundary(s.from) {
				return fmt.Errorf("insert at %d: %w", s.from, ErrInvalidPosition)
			}
		}
	}

	sort.Slice(deletes, func(i, j int) bool { return deletes[i].from < deletes[j].from })
	for i := 1; i < len(deletes); i++ {
		if deletes[i].from < deletes[i-1].to {
			return fmt.Errorf("delete %d..%d overlaps %d..%d: %w",
				deletes[i].from, deletes[i].to, deletes[i-1].from, deletes[i-1].to, ErrOverlappingSteps)
		}
	}

	for _, s := range tx.steps {
		if s.kind != stepInsert {
			continue
		}
		for _, del := range deletes {
			if s.from > del.from && s.from < del.to {
				return fmt.Errorf("insert at %d inside deleted %d..%d: %w", s.from, del.from, del.to, ErrOverlappingSteps)
			}
		}
		inserts[s.from] = append(inserts[s.from], s.nodes...)
	}

	deleted := func(from, to int) bool {
		for _, del := range deletes {
			if del.from <= from && to <= del.to {
				return true
			}
		}
		return false
	}

	out := make([]*Node, 0, len(d.blocks)+len(inserts))
	pos := 0
	for _, b := range d.blocks {
		out = append(out, inserts[pos]...)
		end := pos + b.Size()
		if !deleted(pos, end) {
			out = append(out, b)
		}
		pos = end
	}
	out = append(out, inserts[pos]...)

	d.blocks = out
	d.version++
	return nil
}
