package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"blogwriter/internal/config"
	"blogwriter/internal/domain"
	"blogwriter/internal/domain/models/article"
	articleRepo "blogwriter/internal/domain/repositories/article"
)

const initialCommitMessage = "chore: initial commit"

// WorkspaceRepository implements articleRepo.WorkspaceRepository on the
// local filesystem. The recent list lives in the preferences file.
type WorkspaceRepository struct {
	git       *runner
	prefsPath string
	now       func() time.Time
	logger    *slog.Logger

	mu sync.Mutex // guards the preferences file
}

var _ articleRepo.WorkspaceRepository = (*WorkspaceRepository)(nil)

// NewWorkspaceRepository creates a repository that records recently
// opened workspaces in prefsPath.
func NewWorkspaceRepository(prefsPath string, logger *slog.Logger) *WorkspaceRepository {
	return &WorkspaceRepository{
		git:       newRunner(logger),
		prefsPath: prefsPath,
		now:       time.Now,
		logger:    logger,
	}
}

// Open loads the workspace at root.
func (r *WorkspaceRepository) Open(ctx context.Context, root string) (*article.Workspace, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace path: %w", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", root, domain.ErrNotRepository)
		}
		return nil, fmt.Errorf("stat workspace: %w", err)
	}

	ws, err := r.prepare(root, "")
	if err != nil {
		return nil, err
	}
	if err := r.touch(root); err != nil {
		return nil, err
	}
	r.logger.Debug("workspace opened", "root", root)
	return ws, nil
}

// Create initialises a git repository at root.
func (r *WorkspaceRepository) Create(ctx context.Context, root, remote string) (*article.Workspace, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace path: %w", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".git")); err == nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("%s is already a git repository", root),
			ResourceType: "workspace",
			ResourceID:   root,
		}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace directory: %w", err)
	}

	if _, err := r.git.run(ctx, root, "init"); err != nil {
		return nil, err
	}
	branch := config.DefaultSettings().DefaultBranch
	if _, err := r.git.run(ctx, root, "symbolic-ref", "HEAD", "refs/heads/"+branch); err != nil {
		return nil, err
	}
	if remote != "" {
		if _, err := r.git.run(ctx, root, "remote", "add", "origin", remote); err != nil {
			return nil, err
		}
	}

	ws, err := r.prepare(root, remote)
	if err != nil {
		return nil, err
	}
	if _, err := r.git.commit(ctx, root, initialCommitMessage, "."); err != nil {
		return nil, err
	}
	if err := r.touch(root); err != nil {
		return nil, err
	}
	r.logger.Info("workspace created", "root", root, "remote", remote)
	return ws, nil
}

// Recent returns the recently opened list.
func (r *WorkspaceRepository) Recent(ctx context.Context) ([]config.RecentWorkspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, err := config.LoadPreferences(r.prefsPath)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if prefs.RecentlyOpened == nil {
		return []config.RecentWorkspace{}, nil
	}
	return prefs.RecentlyOpened, nil
}

// ListFiles walks root in lexical order.
func (r *WorkspaceRepository) ListFiles(ctx context.Context, root string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("directory %s not found", root)}
		}
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// prepare ensures the article and settings directories exist and loads
// the settings, writing defaults when the file is missing.
func (r *WorkspaceRepository) prepare(root, remote string) (*article.Workspace, error) {
	for _, dir := range []string{article.ArticlesDir, article.SettingsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	path := filepath.Join(root, article.SettingsDir, article.SettingsFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		settings := config.DefaultSettings()
		settings.Remote = remote
		if err := config.SaveSettings(path, settings); err != nil {
			return nil, fmt.Errorf("write default settings: %w", err)
		}
	}

	settings, err := config.LoadSettings(path)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	return &article.Workspace{Root: root, Settings: settings}, nil
}

func (r *WorkspaceRepository) touch(root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, err := config.LoadPreferences(r.prefsPath)
	if err != nil {
		// a corrupt preferences file should not block opening a workspace
		r.logger.Warn("preferences unreadable, starting a new recent list", "path", r.prefsPath, "error", err)
		prefs = config.Preferences{}
	}
	prefs.Touch(root, r.now())
	if err := config.SavePreferences(r.prefsPath, prefs); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
