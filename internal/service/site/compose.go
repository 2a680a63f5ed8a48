package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sunset/internal/compose"
	"sunset/internal/domain"
	siteRepo "sunset/internal/domain/repositories/site"
	siteSvc "sunset/internal/domain/services/site"
)

// composeService implements the ComposeService interface. Two composition
// engines serve legacy and current content; one capability, selected by
// which entry file exists for the revision, so no consumer duplicates the
// choice.
type composeService struct {
	bundler   *compose.BundleComposer
	includes  *compose.HTMLComposer
	revisions siteRepo.RevisionRepository
	logger    *slog.Logger
}

// NewComposeService creates the read-path service.
func NewComposeService(
	bundler *compose.BundleComposer,
	includes *compose.HTMLComposer,
	revisions siteRepo.RevisionRepository,
	logger *slog.Logger,
) siteSvc.ComposeService {
	return &composeService{
		bundler:   bundler,
		includes:  includes,
		revisions: revisions,
		logger:    logger,
	}
}

// resolveRevision pins the revision number: rev <= 0 selects the latest.
// Composition reads are always pinned to an explicit number before any
// content is fetched, so a concurrent generation can never shift content
// mid-computation.
func (s *composeService) resolveRevision(ctx context.Context, projectID string, rev int) (int, error) {
	if rev > 0 {
		return rev, nil
	}
	max, err := s.revisions.MaxRevisionNumber(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("resolve latest revision: %w", err)
	}
	if max == 0 {
		return 0, fmt.Errorf("project %s has no revisions: %w", projectID, domain.ErrNotFound)
	}
	return max, nil
}

// Page composes a full document. The component bundling engine takes
// precedence; a revision with no component entry falls back to the HTML
// include composer.
func (s *composeService) Page(ctx context.Context, projectID string, rev int) (*compose.Artifact, error) {
	pinned, err := s.resolveRevision(ctx, projectID, rev)
	if err != nil {
		return nil, err
	}

	artifact, err := s.bundler.Compose(ctx, projectID, pinned)
	if err == nil {
		return artifact, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return s.includes.Compose(ctx, projectID, pinned)
}

// BrowserModule builds the browser target; only the bundling engine serves
// it, legacy HTML revisions have no module form.
func (s *composeService) BrowserModule(ctx context.Context, projectID string, rev int) (string, []string, error) {
	pinned, err := s.resolveRevision(ctx, projectID, rev)
	if err != nil {
		return "", nil, err
	}
	return s.bundler.BrowserModule(ctx, projectID, pinned)
}
