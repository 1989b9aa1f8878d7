package article

import (
	"strings"

	models "blogwriter/internal/domain/models/article"
	articleSvc "blogwriter/internal/domain/services/article"
)

const wordsPerMinute = 200

type contentAnalyzer struct{}

// NewContentAnalyzer creates a new content analyzer
func NewContentAnalyzer() articleSvc.ContentAnalyzer {
	return &contentAnalyzer{}
}

// CountWords counts words in the prose of a node list. Code blocks and
// math are not prose and are skipped.
func (a *contentAnalyzer) CountWords(nodes []models.Node) int {
	var b strings.Builder
	writeText(&b, nodes)
	return len(strings.Fields(b.String()))
}

// Stats reports word and image counts with a reading time estimate.
func (a *contentAnalyzer) Stats(nodes []models.Node) models.Stats {
	words := a.CountWords(nodes)
	images := 0
	models.Walk(nodes, func(n models.Node) bool {
		if n.Kind() == models.KindMedia {
			images++
		}
		return true
	})
	return models.Stats{
		Words:          words,
		Images:         images,
		ReadingMinutes: (words + wordsPerMinute - 1) / wordsPerMinute,
	}
}

// writeText concatenates text content. Inline nodes join without a gap so
// "bo" + "ld" stays one word; block nodes are separated by a space.
func writeText(b *strings.Builder, nodes []models.Node) {
	for _, n := range nodes {
		switch n.Kind() {
		case models.KindCode, models.KindMath, models.KindMedia:
			continue
		case models.KindVoid:
			b.WriteByte(' ')
			continue
		}
		block := !models.IsPhrasing(n.Tag)
		if block {
			b.WriteByte(' ')
		}
		if n.Content.IsText() {
			b.WriteString(n.Content.String())
		} else {
			writeText(b, n.Content.Children())
		}
		if block {
			b.WriteByte(' ')
		}
	}
}
