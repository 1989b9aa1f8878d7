package handler

import (
	"log/slog"
	"net/http"

	"blogwriter/internal/httputil"
	"blogwriter/internal/service/article/media"
	"blogwriter/internal/service/article/sanitizer"
)

// SVGHandler exposes the SVG sanitizer and media encoder
type SVGHandler struct {
	pipeline *media.Pipeline
	logger   *slog.Logger
}

// NewSVGHandler creates a new SVG handler. pipeline applies the default
// workspace limits; session embeds use the workspace's own settings.
func NewSVGHandler(pipeline *media.Pipeline, logger *slog.Logger) *SVGHandler {
	return &SVGHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// SVGRequest carries SVG markup
type SVGRequest struct {
	SVG string `json:"svg"`
	Alt string `json:"alt,omitempty"`
}

// SanitizeResponse is the sanitized markup
type SanitizeResponse struct {
	SVG     string `json:"svg"`
	Changed bool   `json:"changed"`
}

// EncodeResponse is a data URI
type EncodeResponse struct {
	DataURI string `json:"dataUri"`
}

// Sanitize strips executable content
// POST /api/svg/sanitize
func (h *SVGHandler) Sanitize(w http.ResponseWriter, r *http.Request) {
	var req SVGRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	clean := sanitizer.SanitizeSVG(req.SVG)
	httputil.RespondJSON(w, http.StatusOK, SanitizeResponse{
		SVG:     clean,
		Changed: clean != req.SVG,
	})
}

// Encode wraps markup in a data URI without sanitizing it
// POST /api/svg/encode
func (h *SVGHandler) Encode(w http.ResponseWriter, r *http.Request) {
	var req SVGRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, EncodeResponse{DataURI: media.EncodeDataURI(req.SVG)})
}

// Embed sanitizes, checks and encodes markup into an img node
// POST /api/svg/embed
func (h *SVGHandler) Embed(w http.ResponseWriter, r *http.Request) {
	var req SVGRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	node, err := h.pipeline.Embed(req.SVG, req.Alt)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}
