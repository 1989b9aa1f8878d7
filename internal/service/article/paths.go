package article

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"

	models "blogwriter/internal/domain/models/article"
)

const articleExt = ".json"

// defaultPath derives blog/<slug>.json from a title.
func defaultPath(title string) string {
	return path.Join(models.ArticlesDir, slugify(title)+articleExt)
}

// slugify lowercases letters and digits and joins runs of anything else
// with a single hyphen.
func slugify(title string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if gap && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			gap = false
			continue
		}
		gap = true
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

// cleanPath normalises a request path to slash form.
func cleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
}
