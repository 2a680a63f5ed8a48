package site

import (
	"context"

	models "sunset/internal/domain/models/site"
)

// ProjectRepository persists projects. Project creation belongs to the chat
// collaborator; this subsystem only needs existence/ownership checks plus a
// create used by dev seeding.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error

	// GetByID returns the project, or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Project, error)
}
