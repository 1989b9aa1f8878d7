package schema

import (
	"fmt"
	"slices"
	"strings"

	"blogwriter/internal/domain"
	"blogwriter/internal/domain/models/article"
)

// fieldTags maps node fields to the tags allowed to carry them.
var fieldTags = map[string][]string{
	"url":      {article.TagImg},
	"alt":      {article.TagImg},
	"mode":     {article.TagMath},
	"numbered": {article.TagMath},
	"label":    {article.TagMath},
	"datetime": {article.TagTime},
	"start":    {article.TagOl},
	"lang":     {article.TagPre},
}

// structuralViolations checks the rules JSON schema cannot express
// clearly: body field choice, parent/child tags, and per-tag shape.
func structuralViolations(inst any, maxDepth int) []domain.Violation {
	root, ok := inst.(map[string]any)
	if !ok {
		return nil
	}

	w := &walker{maxDepth: maxDepth}
	_, hasContent := root["content"]
	_, hasDocument := root["document"]
	switch {
	case hasContent && hasDocument:
		w.add("", domain.ViolationStructure, `article must have either "document" or "content", not both`)
	case !hasContent && !hasDocument:
		w.add("/document", domain.ViolationRequired, `missing node list ("document", or legacy "content")`)
	}

	for _, key := range []string{"content", "document"} {
		if list, ok := root[key].([]any); ok {
			w.nodes(list, "/"+key, "", 1)
		}
	}
	return w.out
}

type walker struct {
	maxDepth int
	out      []domain.Violation
}

func (w *walker) add(path, kind, msg string) {
	w.out = append(w.out, domain.Violation{Path: path, Kind: kind, Message: msg})
}

func (w *walker) nodes(list []any, path, parent string, depth int) {
	if w.maxDepth > 0 && depth > w.maxDepth {
		w.add(path, domain.ViolationStructure, fmt.Sprintf("nodes nested deeper than %d levels", w.maxDepth))
		return
	}
	for i, item := range list {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tag, ok := node["tag"].(string)
		if !ok || !article.IsKnownTag(tag) {
			continue
		}
		p := index(path, i)
		w.placement(p, tag, parent)
		w.shape(p, tag, node)
		if text, ok := node["content"].(string); ok {
			w.text(p+"/content", text)
		}
		if children, ok := node["content"].([]any); ok && !isLeaf(tag) {
			w.nodes(children, p+"/content", tag, depth+1)
		}
	}
}

// placement reports a node that cannot appear under parent. At most one
// violation is reported per node.
func (w *walker) placement(path, tag, parent string) {
	where := "at the top level"
	if parent != "" {
		where = "inside " + parent
	}
	if parents := article.RequiredParents(tag); parents != nil && !slices.Contains(parents, parent) {
		w.add(path, domain.ViolationStructure,
			fmt.Sprintf("%s must be a direct child of %s, found %s", tag, strings.Join(parents, " or "), where))
		return
	}
	if allowed := article.AllowedChildren(parent); allowed != nil && !slices.Contains(allowed, tag) {
		w.add(path, domain.ViolationStructure,
			fmt.Sprintf("%s may only contain %s, found %s", parent, strings.Join(allowed, " or "), tag))
		return
	}
	if article.IsPhrasingOnly(parent) && !article.IsPhrasing(tag) {
		w.add(path, domain.ViolationStructure,
			fmt.Sprintf("%s may only contain inline content, found %s", parent, tag))
	}
}

func (w *walker) shape(path, tag string, node map[string]any) {
	for field, tags := range fieldTags {
		if _, ok := node[field]; ok && !slices.Contains(tags, tag) {
			w.add(path+"/"+field, domain.ViolationExtraField,
				fmt.Sprintf("%s is only allowed on %s, not on %s", field, strings.Join(tags, ", "), tag))
		}
	}

	content, hasContent := node["content"]
	_, isText := content.(string)
	_, isList := content.([]any)

	switch kind := article.KindOf(tag); {
	case kind == article.KindMedia:
		if _, ok := node["url"]; !ok {
			w.add(path+"/url", domain.ViolationRequired, "img requires url")
		}
		if hasContent {
			w.add(path+"/content", domain.ViolationStructure, "img cannot have content")
		}
	case kind == article.KindVoid:
		if hasContent {
			w.add(path+"/content", domain.ViolationStructure, tag+" cannot have content")
		}
	case kind == article.KindMath:
		if _, ok := node["mode"]; !ok {
			w.add(path+"/mode", domain.ViolationRequired, "math requires mode")
		}
		w.requireText(path, tag, hasContent, isList)
	case kind == article.KindText || kind == article.KindCode:
		w.requireText(path, tag, hasContent, isList)
	case article.AllowedChildren(tag) != nil:
		if !hasContent {
			w.add(path+"/content", domain.ViolationRequired, tag+" requires content")
		} else if isText {
			w.add(path+"/content", domain.ViolationType,
				fmt.Sprintf("%s content must be a list of %s nodes", tag, strings.Join(article.AllowedChildren(tag), " or ")))
		}
	default:
		if !hasContent {
			w.add(path+"/content", domain.ViolationRequired, tag+" requires content")
		}
	}
}

// text reports characters the HTML parser drops or rewrites, so content
// holding them cannot survive a round trip through the editor.
func (w *walker) text(path, s string) {
	for _, r := range s {
		if r == '\t' || r == '\n' {
			continue
		}
		if r < 0x20 || r == 0x7f {
			w.add(path, domain.ViolationPattern, fmt.Sprintf("text contains control character %U", r))
			return
		}
	}
}

func (w *walker) requireText(path, tag string, hasContent, isList bool) {
	switch {
	case !hasContent:
		w.add(path+"/content", domain.ViolationRequired, tag+" requires content")
	case isList:
		w.add(path+"/content", domain.ViolationType, tag+" content must be a string")
	}
}

func isLeaf(tag string) bool {
	switch article.KindOf(tag) {
	case article.KindMedia, article.KindMath, article.KindVoid, article.KindText, article.KindCode:
		return true
	}
	return false
}
