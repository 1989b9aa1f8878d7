package article

// Tag names with special handling.
const (
	TagSpan = "span"
	TagImg  = "img"
	TagMath = "math"
	TagTime = "time"
	TagPre  = "pre"
	TagBr   = "br"
	TagHr   = "hr"
	TagOl   = "ol"
	TagUl   = "ul"
	TagLi   = "li"
	TagP    = "p"

	TagTable = "table"
	TagTr    = "tr"
	TagTh    = "th"
	TagTd    = "td"
)

// Kind is the shape variant selected by a node's tag.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindContainer
	KindEmphasis
	KindVoid
	KindMedia
	KindMath
	KindTime
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindContainer:
		return "container"
	case KindEmphasis:
		return "emphasis"
	case KindVoid:
		return "void"
	case KindMedia:
		return "media"
	case KindMath:
		return "math"
	case KindTime:
		return "time"
	case KindCode:
		return "code"
	}
	return "unknown"
}

var tagKinds = func() map[string]Kind {
	kinds := map[string]Kind{
		TagSpan: KindText,
		TagImg:  KindMedia,
		TagMath: KindMath,
		TagTime: KindTime,
		TagPre:  KindCode,
		TagBr:   KindVoid,
		TagHr:   KindVoid,
	}
	for _, tag := range containerTags {
		kinds[tag] = KindContainer
	}
	for _, tag := range emphasisTags {
		kinds[tag] = KindEmphasis
	}
	return kinds
}()

var containerTags = []string{
	TagP, "h1", "h2", "h3", "h4", "h5", "blockquote",
	TagOl, TagUl, TagLi, TagTable, TagTr, TagTh, TagTd,
	"header", "footer", "main", "section", "article", "aside", "nav",
	"figure", "figcaption",
}

var emphasisTags = []string{
	"b", "i", "u", "strong", "em", "code", "sub", "sup", "s", "mark", "small",
}

// phrasing tags may appear inside paragraphs, headings and inline wrappers.
var phrasing = setOf(append([]string{TagSpan, TagImg, TagMath, TagTime, TagBr}, emphasisTags...)...)

// phrasingOnly tags may hold only phrasing children.
var phrasingOnly = setOf(append([]string{TagP, "h1", "h2", "h3", "h4", "h5", TagTime}, emphasisTags...)...)

func setOf(tags ...string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

// KindOf returns the variant for a tag; unrecognised tags are KindUnknown.
func KindOf(tag string) Kind {
	return tagKinds[tag]
}

// IsKnownTag reports whether tag belongs to the node vocabulary.
func IsKnownTag(tag string) bool {
	_, ok := tagKinds[tag]
	return ok
}

// KnownTags returns the vocabulary in no particular order.
func KnownTags() []string {
	tags := make([]string, 0, len(tagKinds))
	for t := range tagKinds {
		tags = append(tags, t)
	}
	return tags
}

// IsPhrasing reports whether tag is inline content.
func IsPhrasing(tag string) bool { return phrasing[tag] }

// IsPhrasingOnly reports whether tag may only contain inline content.
func IsPhrasingOnly(tag string) bool { return phrasingOnly[tag] }

// TextDefault reports whether an element with this tag and no children
// decodes to empty text rather than an empty child list.
func TextDefault(tag string) bool {
	switch KindOf(tag) {
	case KindText, KindEmphasis, KindCode, KindMath, KindUnknown:
		return true
	}
	return false
}

// AllowedChildren returns the only tags permitted as direct children of
// tag, or nil when any child is structurally allowed.
func AllowedChildren(tag string) []string {
	switch tag {
	case TagOl, TagUl:
		return []string{TagLi}
	case TagTable:
		return []string{TagTr}
	case TagTr:
		return []string{TagTh, TagTd}
	}
	return nil
}

// RequiredParents returns the tags one of which must directly contain tag,
// or nil when tag may appear anywhere.
func RequiredParents(tag string) []string {
	switch tag {
	case TagLi:
		return []string{TagOl, TagUl}
	case TagTr:
		return []string{TagTable}
	case TagTh, TagTd:
		return []string{TagTr}
	}
	return nil
}
