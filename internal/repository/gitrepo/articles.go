package gitrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"blogwriter/internal/domain"
	"blogwriter/internal/domain/models/article"
	articleRepo "blogwriter/internal/domain/repositories/article"
)

// ArticleRepository implements articleRepo.ArticleRepository with JSON
// files committed to the workspace repository.
type ArticleRepository struct {
	git    *runner
	logger *slog.Logger
}

var _ articleRepo.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates an ArticleRepository.
func NewArticleRepository(logger *slog.Logger) *ArticleRepository {
	return &ArticleRepository{git: newRunner(logger), logger: logger}
}

// Read loads an article file.
func (r *ArticleRepository) Read(ctx context.Context, ws *article.Workspace, path string) (*article.Article, error) {
	full, err := resolve(ws, path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("article %s not found", path)}
		}
		return nil, fmt.Errorf("read article: %w", err)
	}

	var a article.Article
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("%s is not a valid article file: %v", path, err)}
	}
	return &a, nil
}

// Write replaces the file atomically.
func (r *ArticleRepository) Write(ctx context.Context, ws *article.Workspace, path string, a *article.Article) error {
	full, err := resolve(ws, path)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode article: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create article directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".article-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write article: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write article: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("replace article: %w", err)
	}
	return nil
}

// Exists reports whether path is present.
func (r *ArticleRepository) Exists(ctx context.Context, ws *article.Workspace, path string) (bool, error) {
	full, err := resolve(ws, path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	}
	return false, fmt.Errorf("stat article: %w", err)
}

// Commit stages and commits paths.
func (r *ArticleRepository) Commit(ctx context.Context, ws *article.Workspace, message string, paths ...string) (string, error) {
	for _, p := range paths {
		if _, err := resolve(ws, p); err != nil {
			return "", err
		}
	}
	hash, err := r.git.commit(ctx, ws.Root, message, paths...)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	r.logger.Info("article committed", "root", ws.Root, "paths", paths, "commit", hash)
	return hash, nil
}

// resolve joins a workspace-relative path, rejecting paths that escape
// the workspace.
func resolve(ws *article.Workspace, path string) (string, error) {
	if !filepath.IsLocal(path) {
		return "", &domain.ValidationError{Message: fmt.Sprintf("path %q must be relative to the workspace", path)}
	}
	return filepath.Join(ws.Root, path), nil
}
