package markup

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"blogwriter/internal/domain"
	"blogwriter/internal/domain/models/article"
)

// Serialize renders nodes as concatenated elements in order.
func (e *Engine) Serialize(nodes []article.Node) (string, error) {
	var b strings.Builder
	for i, n := range nodes {
		el, err := toElement(n, "/"+strconv.Itoa(i))
		if err != nil {
			return "", err
		}
		if err := html.Render(&b, el); err != nil {
			return "", &domain.MarkupError{Message: "failed to render node", Err: err}
		}
	}
	return b.String(), nil
}

func toElement(n article.Node, path string) (*html.Node, error) {
	if n.Tag == "" {
		return nil, &domain.MarkupError{Message: fmt.Sprintf("node %s has no tag", path)}
	}
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}

	switch n.Kind() {
	case article.KindMedia:
		setAttr(el, "src", n.URL)
		if n.Alt != "" {
			setAttr(el, "alt", n.Alt)
		}
		return el, nil
	case article.KindMath:
		if n.Mode == article.MathDisplay {
			setAttr(el, "display", "block")
		}
		if n.Numbered {
			setAttr(el, attrNumbered, "true")
		}
		if n.Label != "" {
			setAttr(el, attrLabel, n.Label)
		}
		appendText(el, n.Content.String())
		return el, nil
	case article.KindVoid:
		if !n.Content.IsZero() {
			return nil, &domain.MarkupError{Message: fmt.Sprintf("node %s: <%s> cannot hold content", path, n.Tag)}
		}
		return el, nil
	case article.KindTime:
		if n.Datetime != "" {
			setAttr(el, "datetime", n.Datetime)
		}
	case article.KindCode:
		if n.Lang != "" {
			setAttr(el, attrLang, n.Lang)
		}
	}
	if n.Tag == article.TagOl && n.Start != nil {
		setAttr(el, "start", strconv.Itoa(*n.Start))
	}

	switch {
	case n.Content.IsText():
		if n.Content.String() == "" && !article.TextDefault(n.Tag) {
			setAttr(el, attrContent, markerText)
		}
		appendText(el, n.Content.String())
	case n.Content.IsNodes():
		children := n.Content.Children()
		if len(children) == 0 && article.TextDefault(n.Tag) {
			setAttr(el, attrContent, markerNodes)
		}
		for i, child := range children {
			c, err := toElement(child, path+"/content/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			el.AppendChild(c)
		}
	}
	return el, nil
}

func setAttr(el *html.Node, key, val string) {
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
}

func appendText(el *html.Node, text string) {
	if text == "" {
		return
	}
	el.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
