package markup

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"blogwriter/internal/domain"
	"blogwriter/internal/domain/models/article"
)

// Deserialize converts editor markup into a node list. Only elements at the
// top level become nodes; stray top-level text is ignored.
func (e *Engine) Deserialize(markup string) ([]article.Node, error) {
	if !utf8.ValidString(markup) {
		return nil, &domain.MarkupError{Message: "markup is not valid UTF-8"}
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	children, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, &domain.MarkupError{Message: "failed to parse markup", Err: err}
	}
	for _, c := range children {
		body.AppendChild(c)
	}

	doc := goquery.NewDocumentFromNode(body)
	nodes := []article.Node{}
	for _, c := range eachNode(doc.Contents()) {
		if c.Nodes[0].Type != html.ElementNode {
			continue
		}
		n, err := e.fromElement(c, 1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (e *Engine) fromElement(s *goquery.Selection, depth int) (article.Node, error) {
	if e.maxDepth > 0 && depth > e.maxDepth {
		return article.Node{}, &domain.MarkupError{
			Message: fmt.Sprintf("markup nesting exceeds %d levels", e.maxDepth),
		}
	}

	tag := strings.ToLower(goquery.NodeName(s))
	switch tag {
	case article.TagImg:
		return article.Image(e.resolve(s.AttrOr("src", "")), s.AttrOr("alt", "")), nil
	case article.TagMath:
		return mathNode(s), nil
	}

	n := article.Node{Tag: tag}
	readAttrs(&n, s)

	var (
		kids     []article.Node
		text     strings.Builder
		elements int
	)
	// lists, tables and rows cannot hold text; whitespace between their
	// children is formatting
	structural := article.AllowedChildren(tag) != nil
	flush := func() {
		if text.Len() > 0 && !(structural && isBlank(text.String())) {
			kids = append(kids, article.Span(text.String()))
		}
		text.Reset()
	}

	for _, c := range e.childSelections(s, tag) {
		raw := c.Nodes[0]
		switch raw.Type {
		case html.TextNode:
			text.WriteString(raw.Data)
		case html.ElementNode:
			flush()
			child, err := e.fromElement(c, depth+1)
			if err != nil {
				return article.Node{}, err
			}
			kids = append(kids, child)
			elements++
		}
	}

	if structural && isBlank(text.String()) {
		text.Reset()
	}
	switch {
	case elements == 0 && text.Len() > 0:
		n.Content = article.Text(text.String())
	case elements > 0:
		flush()
		n.Content = article.Nodes(kids...)
	default:
		n.Content = emptyContent(tag, s)
	}
	return n, nil
}

// childSelections lists the children of s in order. Rows wrapped in the
// tbody/thead/tfoot the HTML parser inserts are lifted back into the table.
func (e *Engine) childSelections(s *goquery.Selection, tag string) []*goquery.Selection {
	kids := eachNode(s.Contents())
	if tag != article.TagTable {
		return kids
	}
	flat := make([]*goquery.Selection, 0, len(kids))
	for _, c := range kids {
		switch c.Nodes[0].DataAtom {
		case atom.Tbody, atom.Thead, atom.Tfoot:
			flat = append(flat, eachNode(c.Contents())...)
		default:
			flat = append(flat, c)
		}
	}
	return flat
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func eachNode(s *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, s.Length())
	s.Each(func(_ int, c *goquery.Selection) {
		out = append(out, c)
	})
	return out
}

func emptyContent(tag string, s *goquery.Selection) article.Content {
	if article.KindOf(tag) == article.KindVoid {
		return article.Content{}
	}
	switch s.AttrOr(attrContent, "") {
	case markerText:
		return article.Text("")
	case markerNodes:
		return article.Nodes()
	}
	if article.TextDefault(tag) {
		return article.Text("")
	}
	return article.Nodes()
}

func mathNode(s *goquery.Selection) article.Node {
	mode := article.MathInline
	if strings.EqualFold(s.AttrOr("display", ""), "block") {
		mode = article.MathDisplay
	}
	n := article.Math(s.Text(), mode)
	_, n.Numbered = s.Attr(attrNumbered)
	n.Label = s.AttrOr(attrLabel, "")
	return n
}

func readAttrs(n *article.Node, s *goquery.Selection) {
	switch n.Tag {
	case article.TagTime:
		n.Datetime = s.AttrOr("datetime", "")
	case article.TagOl:
		if v, ok := s.Attr("start"); ok {
			if start, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				n.Start = &start
			}
		}
	case article.TagPre:
		n.Lang = s.AttrOr(attrLang, "")
	}
}

func (e *Engine) resolve(src string) string {
	if e.base == nil || src == "" {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return e.base.ResolveReference(ref).String()
}
