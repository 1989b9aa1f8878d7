package article

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blogwriter/internal/config"
	"blogwriter/internal/domain"
	models "blogwriter/internal/domain/models/article"
	articleRepo "blogwriter/internal/domain/repositories/article"
	articleSvc "blogwriter/internal/domain/services/article"
)

// workspaceService implements the WorkspaceService interface
type workspaceService struct {
	repo   articleRepo.WorkspaceRepository
	logger *slog.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(repo articleRepo.WorkspaceRepository, logger *slog.Logger) articleSvc.WorkspaceService {
	return &workspaceService{
		repo:   repo,
		logger: logger,
	}
}

// Open opens an existing git repository as a workspace
func (s *workspaceService) Open(ctx context.Context, root string) (*models.Workspace, error) {
	if err := validation.Validate(root, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: path: %v", domain.ErrValidation, err)
	}
	ws, err := s.repo.Open(ctx, root)
	if err != nil {
		return nil, err
	}
	s.logger.Info("workspace opened", "root", ws.Root)
	return ws, nil
}

// Create initialises a new repository and workspace layout
func (s *workspaceService) Create(ctx context.Context, req *articleSvc.CreateWorkspaceRequest) (*models.Workspace, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Path, validation.Required),
		validation.Field(&req.Remote, validation.Length(1, 2048)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	ws, err := s.repo.Create(ctx, req.Path, req.Remote)
	if err != nil {
		return nil, err
	}
	s.logger.Info("workspace created",
		"root", ws.Root,
		"remote", req.Remote,
	)
	return ws, nil
}

// Recent lists recently opened workspaces, newest first
func (s *workspaceService) Recent(ctx context.Context) ([]config.RecentWorkspace, error) {
	return s.repo.Recent(ctx)
}

// Files lists the files of a workspace
func (s *workspaceService) Files(ctx context.Context, root string) ([]string, error) {
	if err := validation.Validate(root, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: path: %v", domain.ErrValidation, err)
	}
	return s.repo.ListFiles(ctx, root)
}
