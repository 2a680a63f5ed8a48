package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"sunset/internal/domain"
	"sunset/internal/httputil"
)

// handleError maps domain errors to RFC 7807 responses. Pipeline errors carry
// a specific reason the caller can act on; everything unrecognized collapses
// to an opaque 500 with the detail kept in the log.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	// Rate-limit rejections carry quota extras the generic mapping would drop.
	var rateErr *domain.RateLimitError
	if errors.As(err, &rateErr) {
		httputil.RespondErrorWithExtras(w, rateErr.StatusCode(), rateErr.Error(), map[string]interface{}{
			"remaining":      rateErr.Remaining,
			"reset_epoch_ms": rateErr.ResetEpochMS,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidDestination),
		errors.Is(err, domain.ErrMarkupInvalid),
		errors.Is(err, domain.ErrNestedDocumentInFragment),
		errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrContentTooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrComposeUnavailable):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrRevisionAllocationFailed):
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("unhandled error",
			"error", err,
			"path", r.URL.Path,
			"method", r.Method,
		)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
