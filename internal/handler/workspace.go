package handler

import (
	"log/slog"
	"net/http"

	articleSvc "blogwriter/internal/domain/services/article"
	"blogwriter/internal/httputil"
)

// WorkspaceHandler handles workspace HTTP requests
type WorkspaceHandler struct {
	service articleSvc.WorkspaceService
	logger  *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(service articleSvc.WorkspaceService, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		service: service,
		logger:  logger,
	}
}

// OpenWorkspaceRequest names an existing workspace
type OpenWorkspaceRequest struct {
	Path string `json:"path"`
}

// FilesResponse lists workspace files
type FilesResponse struct {
	Root  string   `json:"root"`
	Files []string `json:"files"`
}

// CreateWorkspace initialises a new repository
// POST /api/workspaces
func (h *WorkspaceHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req articleSvc.CreateWorkspaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	ws, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, ws)
}

// OpenWorkspace opens an existing repository
// POST /api/workspaces/open
func (h *WorkspaceHandler) OpenWorkspace(w http.ResponseWriter, r *http.Request) {
	var req OpenWorkspaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	ws, err := h.service.Open(r.Context(), req.Path)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ws)
}

// ListRecent returns recently opened workspaces
// GET /api/workspaces/recent
func (h *WorkspaceHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	recent, err := h.service.Recent(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, recent)
}

// ListFiles returns the files of a workspace
// GET /api/workspaces/files?path=
func (h *WorkspaceHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("path")

	files, err := h.service.Files(r.Context(), root)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FilesResponse{Root: root, Files: files})
}
