package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Generation/composition pipeline errors. These form the error taxonomy of
// the build-and-compose pipeline; handlers map them to HTTP statuses and
// specific reason strings.
var (
	// ErrInvalidDestination means the destination path was rejected by the
	// path normalizer. Never coerced into a usable path.
	ErrInvalidDestination = errors.New("invalid destination path")

	// ErrContentTooLarge means generated content exceeds the hard size ceiling.
	ErrContentTooLarge = errors.New("content too large")

	// ErrMarkupInvalid means validation failed and the repair pass could not
	// produce structurally valid markup.
	ErrMarkupInvalid = errors.New("markup invalid")

	// ErrNestedDocumentInFragment means a fragment destination (page/section)
	// contained a full document root.
	ErrNestedDocumentInFragment = errors.New("fragment contains document root")

	// ErrRevisionAllocationFailed means the optimistic revision-number retry
	// budget was exhausted. This indicates systemic contention, not bad
	// content, and is fatal to the triggering write.
	ErrRevisionAllocationFailed = errors.New("revision allocation failed")

	// ErrComposeUnavailable means the bundling/render pipeline could not
	// produce an artifact for the requested revision. Composition is a read
	// path; this is surfaced as "not available", never as a crash.
	ErrComposeUnavailable = errors.New("composition unavailable")

	// ErrRateLimited means the per-user generation quota was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ConflictError represents a resource conflict with details about the existing resource
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (revision, file, project)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// RateLimitError carries the quota state of a rejected call so handlers can
// surface it alongside the 429. Implements HTTPError.
type RateLimitError struct {
	Remaining    int   // calls left in the current window (0 on rejection)
	ResetEpochMS int64 // unix millis at which the window resets
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return ErrRateLimited.Error()
}

// StatusCode implements the HTTPError interface
func (e *RateLimitError) StatusCode() int {
	return http.StatusTooManyRequests
}

// Is allows errors.Is() to match against ErrRateLimited
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
