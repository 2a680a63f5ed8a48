package site

import (
	"context"
	"fmt"
	"log/slog"

	models "sunset/internal/domain/models/site"
	siteRepo "sunset/internal/domain/repositories/site"
	"sunset/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFileVersionRepository implements the FileVersionRepository interface
type PostgresFileVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFileVersionRepository creates a new file version repository
func NewFileVersionRepository(config *postgres.RepositoryConfig) siteRepo.FileVersionRepository {
	return &PostgresFileVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create appends a version row. Versions are immutable; there is no update
// or delete path anywhere in this repository.
func (r *PostgresFileVersionRepository) Create(ctx context.Context, version *models.FileVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, file_id, revision_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, r.tables.FileVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		version.ID,
		version.FileID,
		version.RevisionID,
		version.Content,
		version.CreatedAt,
	).Scan(&version.CreatedAt)

	if err != nil {
		return fmt.Errorf("create file version: %w", err)
	}

	return nil
}

// ContentAtOrBefore returns the content of path with the greatest revision
// number <= rev, or ok=false when the path has no version at that point.
func (r *PostgresFileVersionRepository) ContentAtOrBefore(ctx context.Context, projectID, path string, rev int) (string, bool, error) {
	query := fmt.Sprintf(`
		SELECT fv.content
		FROM %s fv
		JOIN %s f ON f.id = fv.file_id
		JOIN %s r ON r.id = fv.revision_id
		WHERE f.project_id = $1 AND f.path = $2 AND r.revision_number <= $3
		ORDER BY r.revision_number DESC
		LIMIT 1
	`, r.tables.FileVersions, r.tables.Files, r.tables.Revisions)

	var content string
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID, path, rev).Scan(&content)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("content at or before revision %d: %w", rev, err)
	}

	return content, true, nil
}

// AllAtOrBefore returns the per-path latest content visible at or before rev.
func (r *PostgresFileVersionRepository) AllAtOrBefore(ctx context.Context, projectID string, rev int) (map[string]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (f.path) f.path, fv.content
		FROM %s fv
		JOIN %s f ON f.id = fv.file_id
		JOIN %s r ON r.id = fv.revision_id
		WHERE f.project_id = $1 AND r.revision_number <= $2
		ORDER BY f.path, r.revision_number DESC
	`, r.tables.FileVersions, r.tables.Files, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID, rev)
	if err != nil {
		return nil, fmt.Errorf("all content at or before revision %d: %w", rev, err)
	}
	defer rows.Close()

	contents := make(map[string]string)
	for rows.Next() {
		var path, content string
		if err := rows.Scan(&path, &content); err != nil {
			return nil, fmt.Errorf("scan file version: %w", err)
		}
		contents[path] = content
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file versions: %w", err)
	}

	return contents, nil
}

// AllLatestExcluding returns the per-path maximum-revision content across the
// whole project, excluding one caller-specified path.
func (r *PostgresFileVersionRepository) AllLatestExcluding(ctx context.Context, projectID, excludePath string) (map[string]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (f.path) f.path, fv.content
		FROM %s fv
		JOIN %s f ON f.id = fv.file_id
		JOIN %s r ON r.id = fv.revision_id
		WHERE f.project_id = $1 AND f.path <> $2
		ORDER BY f.path, r.revision_number DESC
	`, r.tables.FileVersions, r.tables.Files, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID, excludePath)
	if err != nil {
		return nil, fmt.Errorf("all latest content: %w", err)
	}
	defer rows.Close()

	contents := make(map[string]string)
	for rows.Next() {
		var path, content string
		if err := rows.Scan(&path, &content); err != nil {
			return nil, fmt.Errorf("scan file version: %w", err)
		}
		contents[path] = content
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file versions: %w", err)
	}

	return contents, nil
}
