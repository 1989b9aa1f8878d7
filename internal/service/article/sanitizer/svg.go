// Package sanitizer removes executable constructs from markup that is about
// to enter an article: embedded SVG images and editor markup.
package sanitizer

import (
	"regexp"
)

// Element names are matched with an optional XML namespace prefix
// (svg:script executes just like script).
const prefix = `(?:[a-z0-9_.-]+:)?`

var (
	selfClosing = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<` + prefix + `script[^>]*/>`),
		regexp.MustCompile(`(?is)<` + prefix + `foreignobject[^>]*/>`),
	}
	paired = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<` + prefix + `script[^>]*>.*?</\s*` + prefix + `script[^>]*>`),
		regexp.MustCompile(`(?is)<` + prefix + `foreignobject[^>]*>.*?</\s*` + prefix + `foreignobject[^>]*>`),
	}
	strayClose = regexp.MustCompile(`(?i)</\s*` + prefix + `(?:script|foreignobject)[^>]*>`)
	opener     = regexp.MustCompile(`(?i)<` + prefix + `(?:script|foreignobject)`)
)

// SanitizeSVG returns svg without script and foreignObject elements.
//
// Removal repeats until a scan finds nothing left to remove, so fragments
// that reassemble into a tag after an inner match is cut are caught too.
// An opener with no closing tag removes everything after it. The result
// never contains "<script" or "<foreignobject" in any letter case.
func SanitizeSVG(svg string) string {
	for {
		before := svg
		for _, re := range selfClosing {
			svg = re.ReplaceAllString(svg, "")
		}
		for _, re := range paired {
			svg = re.ReplaceAllString(svg, "")
		}
		svg = strayClose.ReplaceAllString(svg, "")
		if loc := opener.FindStringIndex(svg); loc != nil && svg == before {
			svg = svg[:loc[0]]
		}
		if svg == before {
			return svg
		}
	}
}

// ContainsExecutable reports whether svg still holds a script or
// foreignObject opener.
func ContainsExecutable(svg string) bool {
	return opener.MatchString(svg)
}
