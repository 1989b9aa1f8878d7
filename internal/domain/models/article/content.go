package article

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type contentKind uint8

const (
	contentAbsent contentKind = iota
	contentText
	contentNodes
)

// Content is the payload of a node: absent, literal text, or an ordered
// list of child nodes. Empty text and an empty list are distinct values.
type Content struct {
	kind  contentKind
	text  string
	nodes []Node
}

// Text returns string content.
func Text(s string) Content {
	return Content{kind: contentText, text: s}
}

// Nodes returns list content. Nodes() with no arguments is an empty list,
// not absent content.
func Nodes(children ...Node) Content {
	if children == nil {
		children = []Node{}
	}
	return Content{kind: contentNodes, nodes: children}
}

// IsZero reports whether the content is absent. Used by `omitzero`.
func (c Content) IsZero() bool { return c.kind == contentAbsent }

// IsText reports whether the content is a string.
func (c Content) IsText() bool { return c.kind == contentText }

// IsNodes reports whether the content is a child list.
func (c Content) IsNodes() bool { return c.kind == contentNodes }

// String returns the text content, or "" for non-text content.
func (c Content) String() string { return c.text }

// Children returns the child list, or nil for non-list content.
func (c Content) Children() []Node { return c.nodes }

// Equal compares content structurally.
func (c Content) Equal(o Content) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case contentText:
		return c.text == o.text
	case contentNodes:
		return EqualNodes(c.nodes, o.nodes)
	}
	return true
}

// MarshalJSON writes a string or an array.
func (c Content) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case contentText:
		return json.Marshal(c.text)
	case contentNodes:
		if c.nodes == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.nodes)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a string or an array of nodes.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Content{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
		return nil
	case '[':
		var nodes []Node
		if err := json.Unmarshal(data, &nodes); err != nil {
			return err
		}
		*c = Nodes(nodes...)
		return nil
	}
	return fmt.Errorf("content must be a string or an array, got %s", data)
}
