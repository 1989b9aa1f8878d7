package article

import (
	"encoding/json"
	"errors"
	"time"
)

// CurrentVersion is written into newly created articles.
const CurrentVersion = "1.0.0"

// DateFormat is the textual layout of metadata timestamps.
const DateFormat = time.RFC3339

// Metadata describes an article. Dates are kept as text so a load/save
// cycle never reformats them.
type Metadata struct {
	Title           string   `json:"title"`
	Author          string   `json:"author,omitempty"`
	Description     string   `json:"description,omitempty"`
	PublicationDate string   `json:"publicationDate,omitempty"`
	UpdatedDate     string   `json:"updatedDate,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// Published parses PublicationDate.
func (m Metadata) Published() (time.Time, error) {
	return time.Parse(DateFormat, m.PublicationDate)
}

// Updated parses UpdatedDate.
func (m Metadata) Updated() (time.Time, error) {
	return time.Parse(DateFormat, m.UpdatedDate)
}

// Article is the persisted unit. Document is always written under the
// "document" key; the legacy "content" key is accepted on read.
type Article struct {
	Version  string   `json:"version"`
	Metadata Metadata `json:"metadata"`
	Document []Node   `json:"document"`
}

// ErrAmbiguousBody is returned when a file carries both body fields.
var ErrAmbiguousBody = errors.New(`article has both "content" and "document"`)

// New returns an empty article stamped with the current version.
func New(meta Metadata) *Article {
	return &Article{
		Version:  CurrentVersion,
		Metadata: meta,
		Document: []Node{},
	}
}

type articleFile struct {
	Version  string   `json:"version"`
	Metadata Metadata `json:"metadata"`
	Document *[]Node  `json:"document,omitempty"`
	Content  *[]Node  `json:"content,omitempty"`
}

// UnmarshalJSON migrates the two-field "content" shape to Document.
func (a *Article) UnmarshalJSON(data []byte) error {
	var f articleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Document != nil && f.Content != nil {
		return ErrAmbiguousBody
	}
	a.Version = f.Version
	a.Metadata = f.Metadata
	switch {
	case f.Document != nil:
		a.Document = *f.Document
	case f.Content != nil:
		a.Document = *f.Content
	default:
		a.Document = []Node{}
	}
	if a.Document == nil {
		a.Document = []Node{}
	}
	return nil
}

// MarshalJSON always emits "document", never null.
func (a Article) MarshalJSON() ([]byte, error) {
	doc := a.Document
	if doc == nil {
		doc = []Node{}
	}
	return json.Marshal(struct {
		Version  string   `json:"version"`
		Metadata Metadata `json:"metadata"`
		Document []Node   `json:"document"`
	}{a.Version, a.Metadata, doc})
}
