package article

import (
	"context"

	"blogwriter/internal/config"
	"blogwriter/internal/domain/models/article"
)

// WorkspaceRepository manages git working trees that hold articles.
type WorkspaceRepository interface {
	// Open loads an existing git working tree, creating the article and
	// settings directories when missing, and records it as recently opened.
	// Returns domain.ErrNotRepository when root has no .git entry.
	Open(ctx context.Context, root string) (*article.Workspace, error)

	// Create initialises a repository at root with an optional origin remote
	// and makes the initial commit.
	Create(ctx context.Context, root, remote string) (*article.Workspace, error)

	// Recent returns recently opened workspaces, most recent first
	Recent(ctx context.Context) ([]config.RecentWorkspace, error)

	// ListFiles returns slash-separated paths of files under root, skipping .git
	ListFiles(ctx context.Context, root string) ([]string, error)
}

// ArticleRepository reads and writes article files inside a workspace.
// Paths are relative to the workspace root.
type ArticleRepository interface {
	// Read loads and decodes an article file
	Read(ctx context.Context, ws *article.Workspace, path string) (*article.Article, error)

	// Write encodes a as indented JSON, creating parent directories
	Write(ctx context.Context, ws *article.Workspace, path string, a *article.Article) error

	// Exists reports whether path is present
	Exists(ctx context.Context, ws *article.Workspace, path string) (bool, error)

	// Commit stages paths and commits them, returning the HEAD hash.
	// When nothing changed the current HEAD is returned without committing.
	Commit(ctx context.Context, ws *article.Workspace, message string, paths ...string) (string, error)
}
