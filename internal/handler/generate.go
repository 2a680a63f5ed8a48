package handler

import (
	"log/slog"
	"net/http"

	"sunset/internal/domain"
	siteSvc "sunset/internal/domain/services/site"
	"sunset/internal/httputil"
	"sunset/internal/ratelimit"
)

// GenerateHandler handles the write path: single-file generation steps and
// the context read the agent collaborator uses to prompt with.
type GenerateHandler struct {
	generation siteSvc.GenerationService
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

// NewGenerateHandler creates a new generation handler
func NewGenerateHandler(generation siteSvc.GenerationService, limiter *ratelimit.Limiter, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		generation: generation,
		limiter:    limiter,
		logger:     logger,
	}
}

// Generate runs one generation step for a project
// POST /api/projects/{id}/generate
// Returns 201 with the generation result, 429 when the per-user quota is spent
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	// Admission check happens before the body is read; a rejected call costs
	// nothing downstream.
	quota := h.limiter.Check(userID)
	if !quota.Allowed {
		h.logger.Warn("generation rate limited", "user_id", userID, "project_id", projectID)
		handleError(w, r, h.logger, &domain.RateLimitError{
			Remaining:    quota.Remaining,
			ResetEpochMS: quota.ResetEpochMS,
		})
		return
	}

	var req siteSvc.GenerateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ProjectID = projectID
	req.UserID = userID

	result, err := h.generation.Generate(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// ContextFiles returns the latest content across all paths, excluding one
// GET /api/projects/{id}/context?exclude=P
func (h *GenerateHandler) ContextFiles(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	exclude := r.URL.Query().Get("exclude")

	files, err := h.generation.ContextFiles(r.Context(), projectID, exclude)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"files": files,
	})
}
