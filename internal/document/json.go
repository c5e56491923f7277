package document

import (
	"encoding/json"
	"fmt"
	"io"
)

// ParseJSON reads a TipTap JSON document ({"type":"doc","content":[...]})
func ParseJSON(r io.Reader) (*Document, error) {
	var root Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode document json: %w", err)
	}
	if root.Type != TypeDoc {
		return nil, fmt.Errorf("decode document json: root node is %q, want %q", root.Type, TypeDoc)
	}
	return FromNode(&root), nil
}

// MarshalJSON encodes the document in TipTap JSON form
func (d *Document) MarshalJSON() ([]byte, error) {
	root := d.Root()
	if root.Content == nil {
		root.Content = []*Node{}
	}
	return json.Marshal(struct {
		Type    NodeType `json:"type"`
		Content []*Node  `json:"content"`
	}{root.Type, root.Content})
}
