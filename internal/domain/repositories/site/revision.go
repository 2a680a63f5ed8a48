package site

import (
	"context"

	models "sunset/internal/domain/models/site"
)

// RevisionRepository persists revision rows. Create relies on the store's
// (project_id, revision_number) uniqueness constraint for correctness under
// concurrent writers; callers retry with a fresh number on domain.ErrConflict.
type RevisionRepository interface {
	// MaxRevisionNumber returns the current maximum revision number for the
	// project, or 0 when the project has no revisions.
	MaxRevisionNumber(ctx context.Context, projectID string) (int, error)

	// Create inserts the revision. Returns an error matching
	// domain.ErrConflict when the revision number is already taken.
	Create(ctx context.Context, rev *models.Revision) error

	// GetByNumber returns the revision with the given number, or
	// domain.ErrNotFound.
	GetByNumber(ctx context.Context, projectID string, number int) (*models.Revision, error)
}
