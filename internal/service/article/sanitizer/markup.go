package sanitizer

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"blogwriter/internal/domain/models/article"
)

var (
	contentMarker = regexp.MustCompile(`^(text|nodes)$`)
	displayValue  = regexp.MustCompile(`^(?i:block|inline)$`)
)

// MarkupSanitizer restricts editor markup to the article node vocabulary
// before it is deserialized. Elements outside the vocabulary are unwrapped
// (their text is kept); script and style content is dropped.
//
// Thread-safe for concurrent use.
type MarkupSanitizer struct {
	policy *bluemonday.Policy
}

// NewMarkupSanitizer creates a sanitizer that allows every vocabulary tag
// plus the attributes the serde engine reads.
func NewMarkupSanitizer() *MarkupSanitizer {
	policy := bluemonday.NewPolicy()
	policy.AllowElements(article.KnownTags()...)
	for _, tag := range article.KnownTags() {
		if tag != article.TagImg {
			policy.AllowNoAttrs().OnElements(tag)
		}
	}

	// img sources are either embedded SVG data URIs or web links
	policy.AllowDataURIImages()
	policy.AllowURLSchemes("http", "https")
	policy.RequireParseableURLs(true)
	policy.AllowAttrs("src", "alt").OnElements(article.TagImg)

	policy.AllowAttrs("display").Matching(displayValue).OnElements(article.TagMath)
	policy.AllowAttrs("data-numbered", "data-label").OnElements(article.TagMath)
	policy.AllowAttrs("datetime").OnElements(article.TagTime)
	policy.AllowAttrs("start").Matching(bluemonday.Integer).OnElements(article.TagOl)
	policy.AllowAttrs("data-lang").OnElements(article.TagPre)
	policy.AllowAttrs("data-content").Matching(contentMarker).Globally()

	return &MarkupSanitizer{policy: policy}
}

// NewStrictMarkupSanitizer strips all markup, leaving text only.
func NewStrictMarkupSanitizer() *MarkupSanitizer {
	return &MarkupSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize removes markup outside the vocabulary while preserving text.
func (s *MarkupSanitizer) Sanitize(markup string) (string, error) {
	return s.policy.Sanitize(markup), nil
}
