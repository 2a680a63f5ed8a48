package site

import (
	"context"
	"fmt"
	"log/slog"

	"sunset/internal/domain"
	models "sunset/internal/domain/models/site"
	siteRepo "sunset/internal/domain/repositories/site"
	"sunset/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRevisionRepository implements the RevisionRepository interface
type PostgresRevisionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewRevisionRepository creates a new revision repository
func NewRevisionRepository(config *postgres.RepositoryConfig) siteRepo.RevisionRepository {
	return &PostgresRevisionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// MaxRevisionNumber returns the current maximum revision number for the
// project, or 0 when the project has none.
func (r *PostgresRevisionRepository) MaxRevisionNumber(ctx context.Context, projectID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(revision_number), 0)
		FROM %s
		WHERE project_id = $1
	`, r.tables.Revisions)

	var max int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max revision number: %w", err)
	}

	return max, nil
}

// Create inserts a revision row. The (project_id, revision_number) unique
// constraint is the only serialization point between concurrent writers; a
// duplicate is reported as domain.ErrConflict so the caller can retry with a
// freshly computed number.
func (r *PostgresRevisionRepository) Create(ctx context.Context, rev *models.Revision) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, project_id, revision_number, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		rev.ID,
		rev.ProjectID,
		rev.RevisionNumber,
		rev.CreatedBy,
		rev.CreatedAt,
	).Scan(&rev.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("revision %d for project %s: %w",
				rev.RevisionNumber, rev.ProjectID, domain.ErrConflict)
		}
		return fmt.Errorf("create revision: %w", err)
	}

	return nil
}

// GetByNumber retrieves a revision by its number within a project.
func (r *PostgresRevisionRepository) GetByNumber(ctx context.Context, projectID string, number int) (*models.Revision, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, revision_number, created_by, created_at
		FROM %s
		WHERE project_id = $1 AND revision_number = $2
	`, r.tables.Revisions)

	var rev models.Revision
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID, number).Scan(
		&rev.ID,
		&rev.ProjectID,
		&rev.RevisionNumber,
		&rev.CreatedBy,
		&rev.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("revision %d: %w", number, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get revision: %w", err)
	}

	return &rev, nil
}
