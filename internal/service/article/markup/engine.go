// Package markup converts between editor markup and article node lists.
//
// Deserialize walks the parsed markup depth first. Runs of text next to
// elements become span nodes; an element holding only text collapses to a
// node with string content. Serialize is the inverse and writes one element
// per node with no wrapping root.
//
// For any structurally valid node list, Deserialize(Serialize(nodes))
// equals nodes. The other direction holds only up to whitespace and
// attribute order.
package markup

import (
	"net/url"

	"blogwriter/internal/config"
	"blogwriter/internal/domain/models/article"
)

// Attribute names read and written besides the tag-defined ones.
const (
	attrContent  = "data-content"
	attrNumbered = "data-numbered"
	attrLabel    = "data-label"
	attrLang     = "data-lang"

	markerText  = "text"
	markerNodes = "nodes"
)

// Engine holds serde options. The zero configuration from New is safe for
// concurrent use; an Engine is never mutated after construction.
type Engine struct {
	base     *url.URL
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithBaseURL resolves relative img sources against base.
func WithBaseURL(base *url.URL) Option {
	return func(e *Engine) { e.base = base }
}

// WithMaxDepth limits element nesting accepted by Deserialize.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) { e.maxDepth = depth }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{maxDepth: config.MaxMarkupDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var std = New()

// Deserialize converts markup with the default engine.
func Deserialize(markup string) ([]article.Node, error) {
	return std.Deserialize(markup)
}

// Serialize converts nodes with the default engine.
func Serialize(nodes []article.Node) (string, error) {
	return std.Serialize(nodes)
}
