package article

import (
	"time"

	"blogwriter/internal/config"
)

// Layout of a workspace working tree.
const (
	ArticlesDir  = "blog"
	SettingsDir  = ".blog-writer"
	SettingsFile = "settings.json"
)

// Workspace is a git working tree that holds articles.
type Workspace struct {
	Root     string          `json:"root"`
	Settings config.Settings `json:"settings"`
}

// Stats summarises the text of a document.
type Stats struct {
	Words          int `json:"words"`
	Images         int `json:"images"`
	ReadingMinutes int `json:"readingMinutes"`
}

// Session is an article open for editing.
type Session struct {
	ID        string     `json:"id"`
	Workspace string     `json:"workspace"`
	Path      string     `json:"path"` // relative to the workspace root
	Article   *Article   `json:"article"`
	Stats     Stats      `json:"stats"`
	Dirty     bool       `json:"dirty"`
	OpenedAt  time.Time  `json:"openedAt"`
	SavedAt   *time.Time `json:"savedAt,omitempty"`
	Commit    string     `json:"commit,omitempty"`
}
