package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the prefixed tables when they do not exist yet.
// Revision numbers carry a per-project uniqueness constraint; it is the only
// serialization point the optimistic allocation loop relies on.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         VARCHAR(32) PRIMARY KEY,
				user_id    TEXT NOT NULL,
				name       TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Projects),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id              UUID PRIMARY KEY,
				project_id      VARCHAR(32) NOT NULL REFERENCES %s(id),
				revision_number INTEGER NOT NULL,
				created_by      TEXT NOT NULL,
				created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (project_id, revision_number)
			)`, tables.Revisions, tables.Projects),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         UUID PRIMARY KEY,
				project_id VARCHAR(32) NOT NULL REFERENCES %s(id),
				path       TEXT NOT NULL,
				role       TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (project_id, path)
			)`, tables.Files, tables.Projects),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          UUID PRIMARY KEY,
				file_id     UUID NOT NULL REFERENCES %s(id),
				revision_id UUID NOT NULL REFERENCES %s(id),
				content     TEXT NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.FileVersions, tables.Files, tables.Revisions),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_file_idx ON %s (file_id)`,
			tables.FileVersions, tables.FileVersions),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
