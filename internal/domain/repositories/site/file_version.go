package site

import (
	"context"

	models "sunset/internal/domain/models/site"
)

// FileVersionRepository persists immutable file contents and implements the
// point-in-time read semantics consumed by the composition engines.
type FileVersionRepository interface {
	// Create appends a new version row. No dedup.
	Create(ctx context.Context, version *models.FileVersion) error

	// ContentAtOrBefore returns the content of path with the greatest
	// revision number <= rev. The boolean is false when no version of the
	// path exists at that point.
	ContentAtOrBefore(ctx context.Context, projectID, path string, rev int) (string, bool, error)

	// AllAtOrBefore returns the per-path latest content visible at or before
	// rev, keyed by path. Paths with no version at that point are absent.
	AllAtOrBefore(ctx context.Context, projectID string, rev int) (map[string]string, error)

	// AllLatestExcluding returns the per-path maximum-revision content across
	// the whole project, excluding one caller-specified path. Used to build
	// generation context for non-modification requests.
	AllLatestExcluding(ctx context.Context, projectID, excludePath string) (map[string]string, error)
}
