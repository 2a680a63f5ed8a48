// Package site defines the service contracts of the build-and-compose
// pipeline: the write path that turns generated text into a new revision,
// and the read path that derives renderable artifacts from one.
package site

import (
	"context"

	"sunset/internal/compose"
)

// GenerateRequest is one single-file generation step, as handed over by the
// conversational agent collaborator.
type GenerateRequest struct {
	ProjectID      string `json:"project_id"`
	UserID         string `json:"user_id"`
	Path           string `json:"path"`
	Content        string `json:"content"`
	IsModification bool   `json:"is_modification"`
}

// GenerateResult reports a successful generation step.
type GenerateResult struct {
	RevisionID     string   `json:"revision_id"`
	RevisionNumber int      `json:"revision_number"`
	Path           string   `json:"path"`
	Content        string   `json:"content"`
	FixesApplied   []string `json:"fixes_applied,omitempty"`
}

// GenerationService is the write path: classify the destination, validate
// and repair the generated text, allocate a revision, and persist the file
// version.
type GenerationService interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// ContextFiles returns the latest content across all paths excluding
	// one, used by the agent collaborator to build generation context for
	// non-modification requests.
	ContextFiles(ctx context.Context, projectID, excludePath string) (map[string]string, error)
}

// ComposeService is the read path: derive artifacts for a pinned revision.
// rev <= 0 selects the project's latest revision.
type ComposeService interface {
	// Page returns a full document ready to serve.
	Page(ctx context.Context, projectID string, rev int) (*compose.Artifact, error)

	// BrowserModule returns self-contained browser module text ready to
	// serve as an executable script, plus degradation warnings.
	BrowserModule(ctx context.Context, projectID string, rev int) (string, []string, error)
}
