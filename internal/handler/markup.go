package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"blogwriter/internal/domain/models/article"
	"blogwriter/internal/httputil"
	"blogwriter/internal/service/article/markup"
	"blogwriter/internal/service/article/schema"
)

// MarkupHandler exposes the serde engine and the validator without a session
type MarkupHandler struct {
	engine    *markup.Engine
	validator *schema.Validator
	logger    *slog.Logger
}

// NewMarkupHandler creates a new markup handler
func NewMarkupHandler(engine *markup.Engine, validator *schema.Validator, logger *slog.Logger) *MarkupHandler {
	return &MarkupHandler{
		engine:    engine,
		validator: validator,
		logger:    logger,
	}
}

// MarkupRequest carries editor markup
type MarkupRequest struct {
	Markup string `json:"markup"`
}

// DocumentRequest carries a node list
type DocumentRequest struct {
	Document []article.Node `json:"document"`
}

// ValidateResponse reports a successful validation
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// Deserialize converts editor markup to nodes
// POST /api/markup/deserialize
func (h *MarkupHandler) Deserialize(w http.ResponseWriter, r *http.Request) {
	var req MarkupRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	nodes, err := h.engine.Deserialize(req.Markup)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, DocumentRequest{Document: nodes})
}

// Serialize converts nodes to editor markup
// POST /api/markup/serialize
func (h *MarkupHandler) Serialize(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	out, err := h.engine.Serialize(req.Document)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, MarkupRequest{Markup: out})
}

// Validate checks a candidate article given as the request body.
// Returns 200 when valid and 422 with every violation otherwise.
// POST /api/validate
func (h *MarkupHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := httputil.ParseJSON(w, r, &raw); err != nil {
		handleParseError(w, err)
		return
	}

	if err := h.validator.Validate(raw); err != nil {
		h.logger.Debug("article rejected", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ValidateResponse{Valid: true})
}
