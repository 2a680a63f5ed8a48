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

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) siteRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert inserts the file, or updates the role and touch-timestamp when the
// (project_id, path) identity already exists. The path identity itself never
// changes.
func (r *PostgresFileRepository) Upsert(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, project_id, path, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id, path)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.ID,
		file.ProjectID,
		file.Path,
		file.Role,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}

	return nil
}

// GetByPath retrieves a file by its path within a project.
func (r *PostgresFileRepository) GetByPath(ctx context.Context, projectID, path string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, path, role, created_at, updated_at
		FROM %s
		WHERE project_id = $1 AND path = $2
	`, r.tables.Files)

	var file models.File
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID, path).Scan(
		&file.ID,
		&file.ProjectID,
		&file.Path,
		&file.Role,
		&file.CreatedAt,
		&file.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file by path: %w", err)
	}

	return &file, nil
}
