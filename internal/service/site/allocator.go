package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"sunset/internal/config"
	"sunset/internal/domain"
	models "sunset/internal/domain/models/site"
	siteRepo "sunset/internal/domain/repositories/site"
)

// RevisionAllocator allocates revision numbers optimistically: compute
// max+1, insert, and retry on a uniqueness conflict when a concurrent writer
// won the race. Numbers are cheap to retry, so correctness rides entirely on
// the store's uniqueness constraint; no lock is ever taken. Gaps are
// allowed, duplicates are not.
type RevisionAllocator struct {
	revisions siteRepo.RevisionRepository
	logger    *slog.Logger
}

// NewRevisionAllocator creates an allocator over the revision repository.
func NewRevisionAllocator(revisions siteRepo.RevisionRepository, logger *slog.Logger) *RevisionAllocator {
	return &RevisionAllocator{revisions: revisions, logger: logger}
}

// Allocate creates the next revision for the project. Exhausting the retry
// budget returns domain.ErrRevisionAllocationFailed, which is fatal to the
// triggering write: it signals systemic contention, not bad content.
func (a *RevisionAllocator) Allocate(ctx context.Context, projectID, actorID string) (*models.Revision, error) {
	for attempt := 1; attempt <= config.RevisionAllocationAttempts; attempt++ {
		max, err := a.revisions.MaxRevisionNumber(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("allocate revision: %w", err)
		}

		rev := &models.Revision{
			ID:             uuid.NewString(),
			ProjectID:      projectID,
			RevisionNumber: max + 1,
			CreatedBy:      actorID,
			CreatedAt:      time.Now().UTC(),
		}

		err = a.revisions.Create(ctx, rev)
		if err == nil {
			return rev, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("allocate revision: %w", err)
		}

		a.logger.Debug("revision number conflict, retrying",
			"project_id", projectID,
			"revision_number", rev.RevisionNumber,
			"attempt", attempt,
		)
	}

	return nil, fmt.Errorf("project %s after %d attempts: %w",
		projectID, config.RevisionAllocationAttempts, domain.ErrRevisionAllocationFailed)
}
