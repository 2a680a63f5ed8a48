package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	siteSvc "sunset/internal/domain/services/site"
	"sunset/internal/httputil"
)

// PreviewHandler handles the read path: composed documents and browser
// modules for a pinned revision.
type PreviewHandler struct {
	compose siteSvc.ComposeService
	logger  *slog.Logger
}

// NewPreviewHandler creates a new preview handler
func NewPreviewHandler(compose siteSvc.ComposeService, logger *slog.Logger) *PreviewHandler {
	return &PreviewHandler{
		compose: compose,
		logger:  logger,
	}
}

// revisionParam parses the optional ?revision=N pin; 0 means latest.
func revisionParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("revision")
	if raw == "" {
		return 0, true
	}
	rev, err := strconv.Atoi(raw)
	if err != nil || rev < 0 {
		return 0, false
	}
	return rev, true
}

// Preview serves the composed document for a revision
// GET /api/projects/{id}/preview?revision=N
func (h *PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	rev, ok := revisionParam(r)
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "revision must be a non-negative integer")
		return
	}

	artifact, err := h.compose.Page(r.Context(), projectID, rev)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if len(artifact.Warnings) > 0 {
		h.logger.Warn("composition degraded",
			"project_id", projectID,
			"revision", rev,
			"warnings", artifact.Warnings,
		)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(artifact.HTML))
}

// BundleJS serves the browser module for a revision
// GET /api/projects/{id}/bundle.js?revision=N
func (h *PreviewHandler) BundleJS(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	rev, ok := revisionParam(r)
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "revision must be a non-negative integer")
		return
	}

	script, warnings, err := h.compose.BrowserModule(r.Context(), projectID, rev)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if len(warnings) > 0 {
		h.logger.Warn("browser module degraded",
			"project_id", projectID,
			"revision", rev,
			"warnings", warnings,
		)
	}

	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(script))
}
