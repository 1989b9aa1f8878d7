package handler

import (
	"log/slog"
	"net/http"

	"blogwriter/internal/domain"
	models "blogwriter/internal/domain/models/article"
	articleSvc "blogwriter/internal/domain/services/article"
	"blogwriter/internal/httputil"
)

// ArticleHandler handles article session HTTP requests
type ArticleHandler struct {
	service articleSvc.ArticleService
	logger  *slog.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(service articleSvc.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		service: service,
		logger:  logger,
	}
}

// UpdateMetadataRequest is the PATCH body for metadata. Absent fields are
// left alone, null clears a field.
type UpdateMetadataRequest struct {
	Title           httputil.OptionalString     `json:"title"`
	Author          httputil.OptionalString     `json:"author"`
	Description     httputil.OptionalString     `json:"description"`
	PublicationDate httputil.OptionalString     `json:"publicationDate"`
	Keywords        httputil.Optional[[]string] `json:"keywords"`
}

// toService maps transport tri-state fields to the domain request
func (req *UpdateMetadataRequest) toService() *articleSvc.UpdateMetadataRequest {
	opt := func(o httputil.OptionalString) articleSvc.OptionalField {
		return articleSvc.OptionalField{Present: o.Present, Value: o.Value}
	}
	var keywords *[]string
	if req.Keywords.Present {
		// null clears like an empty list
		keywords = &[]string{}
		if req.Keywords.Value != nil {
			keywords = req.Keywords.Value
		}
	}
	return &articleSvc.UpdateMetadataRequest{
		Title:           opt(req.Title),
		Author:          opt(req.Author),
		Description:     opt(req.Description),
		PublicationDate: opt(req.PublicationDate),
		Keywords:        keywords,
	}
}

// CreateArticle creates and opens a new article
// POST /api/articles
// Returns 201 if created, 409 with the opened existing article if the file exists
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleSvc.CreateArticleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	sess, err := h.service.Create(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(conflict *domain.ConflictError) (*models.Session, error) {
			return h.service.Open(r.Context(), &articleSvc.OpenArticleRequest{
				Workspace: req.Workspace,
				Path:      conflict.ResourceID,
			})
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, sess)
}

// OpenArticle opens an article file
// POST /api/articles/open
func (h *ArticleHandler) OpenArticle(w http.ResponseWriter, r *http.Request) {
	var req articleSvc.OpenArticleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	sess, err := h.service.Open(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}

// GetArticle returns a session
// GET /api/articles/{id}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}

// CloseArticle discards a session
// DELETE /api/articles/{id}
func (h *ArticleHandler) CloseArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// GetMarkup renders the document for the editor
// GET /api/articles/{id}/markup
func (h *ArticleHandler) GetMarkup(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Render(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, MarkupRequest{Markup: out})
}

// PutMarkup replaces the document with editor markup
// PUT /api/articles/{id}/markup
func (h *ArticleHandler) PutMarkup(w http.ResponseWriter, r *http.Request) {
	var req MarkupRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	sess, err := h.service.ApplyMarkup(r.Context(), r.PathValue("id"), req.Markup)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}

// UpdateMetadata applies a partial metadata update
// PATCH /api/articles/{id}/metadata
func (h *ArticleHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	var req UpdateMetadataRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	sess, err := h.service.UpdateMetadata(r.Context(), r.PathValue("id"), req.toService())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}

// EmbedImage inserts an SVG image into the document
// POST /api/articles/{id}/images
func (h *ArticleHandler) EmbedImage(w http.ResponseWriter, r *http.Request) {
	var req articleSvc.EmbedSVGRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	node, err := h.service.EmbedSVG(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, node)
}

// SaveArticle writes and commits the article
// POST /api/articles/{id}/save
func (h *ArticleHandler) SaveArticle(w http.ResponseWriter, r *http.Request) {
	var req articleSvc.SaveRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			handleParseError(w, err)
			return
		}
	}

	sess, err := h.service.Save(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("save requested",
		"client", httputil.ClientID(r),
		"id", sess.ID,
		"commit", sess.Commit,
	)
	httputil.RespondJSON(w, http.StatusOK, sess)
}

// ExportArticle renders the article as Markdown with front matter
// GET /api/articles/{id}/export?frontmatter=yaml|toml
func (h *ArticleHandler) ExportArticle(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Export(r.Context(), r.PathValue("id"), r.URL.Query().Get("frontmatter"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondBytes(w, http.StatusOK, "text/markdown; charset=utf-8", out)
}
