package article

import (
	"context"

	"blogwriter/internal/config"
	"blogwriter/internal/domain/models/article"
)

// WorkspaceService opens, creates and lists workspaces
type WorkspaceService interface {
	Open(ctx context.Context, root string) (*article.Workspace, error)
	Create(ctx context.Context, req *CreateWorkspaceRequest) (*article.Workspace, error)
	Recent(ctx context.Context) ([]config.RecentWorkspace, error)
	Files(ctx context.Context, root string) ([]string, error)
}

// ArticleService handles editing sessions over article files
type ArticleService interface {
	// Open loads an existing article into a new session
	Open(ctx context.Context, req *OpenArticleRequest) (*article.Session, error)

	// Create writes a new empty article and opens it
	Create(ctx context.Context, req *CreateArticleRequest) (*article.Session, error)

	// Get returns a session by ID
	Get(ctx context.Context, id string) (*article.Session, error)

	// ApplyMarkup replaces the document with the deserialized editor markup
	ApplyMarkup(ctx context.Context, id, markup string) (*article.Session, error)

	// Render serializes the document for the editor
	Render(ctx context.Context, id string) (string, error)

	// UpdateMetadata applies a partial metadata update
	UpdateMetadata(ctx context.Context, id string, req *UpdateMetadataRequest) (*article.Session, error)

	// EmbedSVG sanitizes and encodes an SVG image and inserts it as an img node
	EmbedSVG(ctx context.Context, id string, req *EmbedSVGRequest) (*article.Node, error)

	// Save stamps updatedDate, validates when the workspace requires it,
	// writes the file and commits it
	Save(ctx context.Context, id string, req *SaveRequest) (*article.Session, error)

	// Export renders the article as Markdown with front matter
	Export(ctx context.Context, id, format string) ([]byte, error)

	// Close discards a session. Unsaved changes are lost.
	Close(ctx context.Context, id string) error
}

// ContentAnalyzer computes document statistics
type ContentAnalyzer interface {
	// CountWords counts words in the text of a node list
	CountWords(nodes []article.Node) int

	// Stats counts words, images and estimated reading time
	Stats(nodes []article.Node) article.Stats
}

// CreateWorkspaceRequest represents a workspace creation request
type CreateWorkspaceRequest struct {
	Path   string `json:"path"`
	Remote string `json:"remote,omitempty"` // optional origin URL
}

// OpenArticleRequest represents a request to open an article file
type OpenArticleRequest struct {
	Workspace string `json:"workspace"` // workspace root
	Path      string `json:"path"`      // relative to the workspace root
}

// CreateArticleRequest represents an article creation request
type CreateArticleRequest struct {
	Workspace   string   `json:"workspace"`
	Path        string   `json:"path,omitempty"` // defaults to blog/<slug of title>.json
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"` // defaults to the workspace defaultAuthor
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"` // defaults to the workspace defaultKeywords
}

// OptionalField tracks tri-state semantics for metadata updates (RFC 7396 PATCH).
// This is transport-agnostic (no JSON tags) - handler maps from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"text": field has value
type OptionalField struct {
	Present bool
	Value   *string
}

// UpdateMetadataRequest represents a partial metadata update
type UpdateMetadataRequest struct {
	Title           OptionalField
	Author          OptionalField
	Description     OptionalField
	PublicationDate OptionalField
	Keywords        *[]string // nil = don't change, empty = clear
}

// EmbedSVGRequest represents an image embed request
type EmbedSVGRequest struct {
	Markup   string `json:"markup"`
	Alt      string `json:"alt,omitempty"`
	Position *int   `json:"position,omitempty"` // top-level index; nil appends
}

// SaveRequest represents a save-and-commit request
type SaveRequest struct {
	Message string `json:"message,omitempty"` // commit message; defaults to "docs: update <path>"
}
