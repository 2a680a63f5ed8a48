package site

import (
	"context"

	models "sunset/internal/domain/models/site"
)

// FileRepository persists logical file identities.
type FileRepository interface {
	// Upsert inserts the file or, when (project_id, path) already exists,
	// updates its role and touch-timestamp. The file's ID and timestamps are
	// filled in on return.
	Upsert(ctx context.Context, file *models.File) error

	// GetByPath returns the file at the given path, or domain.ErrNotFound.
	GetByPath(ctx context.Context, projectID, path string) (*models.File, error)
}
