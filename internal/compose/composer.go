// Package compose derives renderable artifacts from stored file versions at
// a fixed revision. Two engines implement the same capability: a legacy
// HTML include composer and the component bundling engine; the compose
// service selects between them by which entry file exists for the revision.
package compose

import (
	"context"
)

// Artifact is a composed document plus structured degradation warnings.
// Warnings distinguish a clean composition from one that had to substitute
// placeholders or drop imports; callers serve the HTML either way.
type Artifact struct {
	HTML     string   `json:"html"`
	Warnings []string `json:"warnings,omitempty"`
}

// Composer derives a document artifact for one pinned (project, revision)
// pair. Implementations must be deterministic: identical stored content
// yields byte-identical output, so results are cacheable by that key.
// A missing entry file is reported as domain.ErrNotFound.
type Composer interface {
	Compose(ctx context.Context, projectID string, rev int) (*Artifact, error)
}
