package compose

import (
	"context"
	"fmt"
	"log/slog"

	"sunset/internal/bundle"
	"sunset/internal/config"
	"sunset/internal/domain"
	siteRepo "sunset/internal/domain/repositories/site"
	"sunset/internal/render"
)

// BundleComposer compiles a revision's component files into renderable
// artifacts. Failure semantics: a missing entry is domain.ErrNotFound; every
// internal build/load/render failure degrades to domain.ErrComposeUnavailable
// with a logged cause. There is no partial-success result.
type BundleComposer struct {
	versions siteRepo.FileVersionRepository
	builder  *bundle.Builder
	sandbox  *render.Sandbox
	stack    *config.StackConfig
	logger   *slog.Logger
}

// NewBundleComposer creates the component bundling composer.
func NewBundleComposer(
	versions siteRepo.FileVersionRepository,
	builder *bundle.Builder,
	sandbox *render.Sandbox,
	stack *config.StackConfig,
	logger *slog.Logger,
) *BundleComposer {
	return &BundleComposer{
		versions: versions,
		builder:  builder,
		sandbox:  sandbox,
		stack:    stack,
		logger:   logger,
	}
}

// snapshot reads all files of the pinned revision into memory and locates
// the component entry.
func (c *BundleComposer) snapshot(ctx context.Context, projectID string, rev int) (map[string]string, string, error) {
	files, err := c.versions.AllAtOrBefore(ctx, projectID, rev)
	if err != nil {
		return nil, "", fmt.Errorf("snapshot %s@%d: %w", projectID, rev, err)
	}
	entry, ok := c.builder.ComponentEntry(files)
	if !ok {
		return nil, "", fmt.Errorf("no component entry at or before revision %d: %w", rev, domain.ErrNotFound)
	}
	return files, entry, nil
}

// Compose builds the server target and renders it to a static document.
func (c *BundleComposer) Compose(ctx context.Context, projectID string, rev int) (*Artifact, error) {
	files, entry, err := c.snapshot(ctx, projectID, rev)
	if err != nil {
		return nil, err
	}

	built, err := c.builder.BuildServer(entry, files)
	if err != nil {
		c.logger.Error("server bundle build failed",
			"project_id", projectID, "revision", rev, "entry", entry, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrComposeUnavailable, err)
	}

	markup, err := c.sandbox.Render(ctx, built.Code, projectID, rev)
	if err != nil {
		c.logger.Error("sandboxed render failed",
			"project_id", projectID, "revision", rev, "entry", entry, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrComposeUnavailable, err)
	}

	return &Artifact{
		HTML:     render.DocumentShell(markup, c.stack.StylingCDN, c.stack.MountElementID),
		Warnings: built.Warnings,
	}, nil
}

// BrowserModule builds the self-contained browser target. The caller serves
// the text as an executable script and embeds its reference in a companion
// shell.
func (c *BundleComposer) BrowserModule(ctx context.Context, projectID string, rev int) (string, []string, error) {
	files, entry, err := c.snapshot(ctx, projectID, rev)
	if err != nil {
		return "", nil, err
	}

	built, err := c.builder.BuildBrowser(entry, files)
	if err != nil {
		c.logger.Error("browser bundle build failed",
			"project_id", projectID, "revision", rev, "entry", entry, "error", err)
		return "", nil, fmt.Errorf("%w: %v", domain.ErrComposeUnavailable, err)
	}

	return built.Code, built.Warnings, nil
}
