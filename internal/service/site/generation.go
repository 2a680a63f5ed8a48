package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"sunset/internal/config"
	"sunset/internal/domain"
	models "sunset/internal/domain/models/site"
	"sunset/internal/domain/repositories"
	siteRepo "sunset/internal/domain/repositories/site"
	siteSvc "sunset/internal/domain/services/site"
	"sunset/internal/markup"
	"sunset/internal/sitepath"
)

// generationService implements the GenerationService interface
type generationService struct {
	allocator *RevisionAllocator
	projects  siteRepo.ProjectRepository
	files     siteRepo.FileRepository
	versions  siteRepo.FileVersionRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewGenerationService creates the write-path service.
func NewGenerationService(
	allocator *RevisionAllocator,
	projects siteRepo.ProjectRepository,
	files siteRepo.FileRepository,
	versions siteRepo.FileVersionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) siteSvc.GenerationService {
	return &generationService{
		allocator: allocator,
		projects:  projects,
		files:     files,
		versions:  versions,
		txManager: txManager,
		logger:    logger,
	}
}

// Generate runs one generation step end to end. Validation and path errors
// are detected before any persistence write and returned with a specific
// reason; nothing is coerced.
func (s *generationService) Generate(ctx context.Context, req *siteSvc.GenerateRequest) (*siteSvc.GenerateResult, error) {
	if err := validateGenerateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	kind, known := sitepath.KindForExtension(req.Path)
	if !known {
		return nil, fmt.Errorf("%w: unrecognized extension in %q", domain.ErrInvalidDestination, req.Path)
	}

	destination, err := sitepath.Normalize(req.Path, kind)
	if err != nil {
		return nil, err
	}
	role := sitepath.Classify(destination)

	content := req.Content
	var fixes []string

	// Component sources pass through untouched; the markup pipeline only
	// applies to document/fragment HTML.
	if kind == sitepath.KindDocument {
		mode := markup.ModeDocument
		if role.IsFragment() {
			mode = markup.ModeFragment
		}

		result := markup.ValidateAndFix(content, mode)
		switch {
		case result.TooLarge:
			return nil, fmt.Errorf("%w: %s", domain.ErrContentTooLarge, result.Errors[0])
		case result.HasNestedRoot:
			return nil, fmt.Errorf("%w: %s", domain.ErrNestedDocumentInFragment, destination)
		case !result.Valid:
			return nil, fmt.Errorf("%w: %v", domain.ErrMarkupInvalid, result.Errors)
		}
		content = result.FixedCode
		fixes = result.FixesApplied
	} else {
		if len(content) > markup.MaxContentSize {
			return nil, fmt.Errorf("%w: content exceeds %d byte limit", domain.ErrContentTooLarge, markup.MaxContentSize)
		}
		if content == "" {
			return nil, fmt.Errorf("%w: content is empty", domain.ErrValidation)
		}
		if stripped, ok := markup.StripCodeFence(strings.TrimSpace(content)); ok {
			content = stripped
			fixes = append(fixes, "stripped enclosing code fence markers")
		}
		// Fragment components must not carry their own document root; the
		// JSX itself is otherwise left untouched.
		if role.IsFragment() && markup.ContainsDocumentRoot(content) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNestedDocumentInFragment, destination)
		}
	}

	if err := s.ensureProject(ctx, req.ProjectID, req.UserID); err != nil {
		return nil, err
	}

	rev, err := s.allocator.Allocate(ctx, req.ProjectID, req.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	file := &models.File{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Path:      destination,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// File row and version row land together or not at all.
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.files.Upsert(ctx, file); err != nil {
			return err
		}
		version := &models.FileVersion{
			ID:         uuid.NewString(),
			FileID:     file.ID,
			RevisionID: rev.ID,
			Content:    content,
			CreatedAt:  now,
		}
		return s.versions.Create(ctx, version)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file generated",
		"project_id", req.ProjectID,
		"path", destination,
		"role", role,
		"revision_number", rev.RevisionNumber,
		"fixes", len(fixes),
	)

	return &siteSvc.GenerateResult{
		RevisionID:     rev.ID,
		RevisionNumber: rev.RevisionNumber,
		Path:           destination,
		Content:        content,
		FixesApplied:   fixes,
	}, nil
}

// ensureProject creates the project row on the first write. The chat
// collaborator normally creates projects ahead of time; a concurrent create
// racing here is treated as success.
func (s *generationService) ensureProject(ctx context.Context, projectID, userID string) error {
	_, err := s.projects.GetByID(ctx, projectID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	createErr := s.projects.Create(ctx, &models.Project{
		ID:        projectID,
		UserID:    userID,
		Name:      projectID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if createErr != nil && !errors.Is(createErr, domain.ErrConflict) {
		return createErr
	}
	return nil
}

// validateGenerateRequest checks the request shape before any pipeline work.
func validateGenerateRequest(req *siteSvc.GenerateRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID,
			validation.Required,
			validation.Length(1, config.MaxProjectIDLength),
		),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Path,
			validation.Required,
			validation.Length(1, config.MaxDestinationPathLength),
		),
		validation.Field(&req.Content, validation.Required),
	)
}

// ContextFiles returns the per-path latest content excluding one path.
func (s *generationService) ContextFiles(ctx context.Context, projectID, excludePath string) (map[string]string, error) {
	return s.versions.AllLatestExcluding(ctx, projectID, excludePath)
}
