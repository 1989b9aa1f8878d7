package article

// MathMode selects inline or display rendering of a math node.
type MathMode string

const (
	MathInline  MathMode = "inline"
	MathDisplay MathMode = "display"
)

// Node is one element of the document tree. Tag selects which of the
// optional fields apply; see Kind.
type Node struct {
	Tag     string  `json:"tag"`
	Content Content `json:"content,omitzero"`

	// img
	URL string `json:"url,omitempty"`
	Alt string `json:"alt,omitempty"`

	// math
	Mode     MathMode `json:"mode,omitempty"`
	Numbered bool     `json:"numbered,omitempty"`
	Label    string   `json:"label,omitempty"`

	// time
	Datetime string `json:"datetime,omitempty"`

	// ol
	Start *int `json:"start,omitempty"`

	// pre
	Lang string `json:"lang,omitempty"`
}

// Span returns a text leaf.
func Span(text string) Node {
	return Node{Tag: TagSpan, Content: Text(text)}
}

// Element returns a node with list content.
func Element(tag string, children ...Node) Node {
	return Node{Tag: tag, Content: Nodes(children...)}
}

// TextElement returns a node holding literal text.
func TextElement(tag, text string) Node {
	return Node{Tag: tag, Content: Text(text)}
}

// Image returns a media node.
func Image(url, alt string) Node {
	return Node{Tag: TagImg, URL: url, Alt: alt}
}

// Math returns a math node.
func Math(source string, mode MathMode) Node {
	return Node{Tag: TagMath, Content: Text(source), Mode: mode}
}

// Kind reports the variant selected by the tag.
func (n Node) Kind() Kind {
	return KindOf(n.Tag)
}

// Equal compares two nodes structurally, including child order.
func (n Node) Equal(o Node) bool {
	if n.Tag != o.Tag ||
		n.URL != o.URL ||
		n.Alt != o.Alt ||
		n.Mode != o.Mode ||
		n.Numbered != o.Numbered ||
		n.Label != o.Label ||
		n.Datetime != o.Datetime ||
		n.Lang != o.Lang {
		return false
	}
	if (n.Start == nil) != (o.Start == nil) {
		return false
	}
	if n.Start != nil && *n.Start != *o.Start {
		return false
	}
	return n.Content.Equal(o.Content)
}

// EqualNodes compares two node lists element by element.
func EqualNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Walk calls fn for every node in depth-first order. Returning false from
// fn skips the node's children.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if fn(n) && n.Content.IsNodes() {
			Walk(n.Content.Children(), fn)
		}
	}
}
