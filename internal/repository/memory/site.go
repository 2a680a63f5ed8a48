// Package memory provides an in-memory implementation of the site
// repositories. It backs unit tests and the database-less dev mode; semantics
// mirror the Postgres implementation, including the uniqueness conflict on
// (project_id, revision_number) that the optimistic allocation loop needs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"sunset/internal/domain"
	models "sunset/internal/domain/models/site"
	"sunset/internal/domain/repositories"
)

// Store holds all site entities behind one mutex. Good enough for tests and
// single-process dev; the Postgres repositories are the production path.
type Store struct {
	mu        sync.Mutex
	projects  map[string]*models.Project
	revisions []*models.Revision
	files     map[string]*models.File // key: projectID + "\x00" + path
	versions  []*models.FileVersion
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		projects: make(map[string]*models.Project),
		files:    make(map[string]*models.File),
	}
}

func fileKey(projectID, path string) string {
	return projectID + "\x00" + path
}

// ExecTx satisfies the TransactionManager interface. Each store operation is
// already atomic under the single mutex, so the callback runs as-is; there is
// no rollback of completed operations.
func (s *Store) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// --- ProjectRepository ---

type ProjectStore struct{ store *Store }

func (p *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	if _, ok := p.store.projects[project.ID]; ok {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("project '%s' already exists", project.ID),
			ResourceType: "project",
			ResourceID:   project.ID,
		}
	}
	clone := *project
	p.store.projects[project.ID] = &clone
	return nil
}

func (p *ProjectStore) GetByID(ctx context.Context, id string) (*models.Project, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	project, ok := p.store.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	clone := *project
	return &clone, nil
}

// Projects returns a project-repository view of the store.
func (s *Store) Projects() *ProjectStore { return &ProjectStore{s} }

// Revisions returns a revision-repository view of the store.
func (s *Store) Revisions() *RevisionStore { return &RevisionStore{s} }

// Files returns a file-repository view of the store.
func (s *Store) Files() *FileStore { return &FileStore{s} }

// FileVersions returns a file-version-repository view of the store.
func (s *Store) FileVersions() *FileVersionStore { return &FileVersionStore{s} }

// --- RevisionRepository ---

type RevisionStore struct{ store *Store }

func (r *RevisionStore) MaxRevisionNumber(ctx context.Context, projectID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	max := 0
	for _, rev := range r.store.revisions {
		if rev.ProjectID == projectID && rev.RevisionNumber > max {
			max = rev.RevisionNumber
		}
	}
	return max, nil
}

func (r *RevisionStore) Create(ctx context.Context, rev *models.Revision) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.revisions {
		if existing.ProjectID == rev.ProjectID && existing.RevisionNumber == rev.RevisionNumber {
			return fmt.Errorf("revision %d for project %s: %w",
				rev.RevisionNumber, rev.ProjectID, domain.ErrConflict)
		}
	}
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}
	clone := *rev
	r.store.revisions = append(r.store.revisions, &clone)
	return nil
}

func (r *RevisionStore) GetByNumber(ctx context.Context, projectID string, number int) (*models.Revision, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, rev := range r.store.revisions {
		if rev.ProjectID == projectID && rev.RevisionNumber == number {
			clone := *rev
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("revision %d: %w", number, domain.ErrNotFound)
}

// --- FileRepository ---

type FileStore struct{ store *Store }

func (f *FileStore) Upsert(ctx context.Context, file *models.File) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	now := time.Now().UTC()
	key := fileKey(file.ProjectID, file.Path)
	if existing, ok := f.store.files[key]; ok {
		existing.Role = file.Role
		existing.UpdatedAt = now
		*file = *existing
		return nil
	}

	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	file.CreatedAt = now
	file.UpdatedAt = now
	clone := *file
	f.store.files[key] = &clone
	return nil
}

func (f *FileStore) GetByPath(ctx context.Context, projectID, path string) (*models.File, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	file, ok := f.store.files[fileKey(projectID, path)]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", path, domain.ErrNotFound)
	}
	clone := *file
	return &clone, nil
}

// --- FileVersionRepository ---

type FileVersionStore struct{ store *Store }

func (v *FileVersionStore) Create(ctx context.Context, version *models.FileVersion) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}
	clone := *version
	v.store.versions = append(v.store.versions, &clone)
	return nil
}

// revisionNumberOf resolves the revision number a version was created under.
// Caller must hold the store mutex.
func (v *FileVersionStore) revisionNumberOf(version *models.FileVersion) int {
	for _, rev := range v.store.revisions {
		if rev.ID == version.RevisionID {
			return rev.RevisionNumber
		}
	}
	return 0
}

// pathOf resolves the file path a version belongs to. Caller must hold the
// store mutex.
func (v *FileVersionStore) pathOf(version *models.FileVersion) (projectID, path string, ok bool) {
	for _, file := range v.store.files {
		if file.ID == version.FileID {
			return file.ProjectID, file.Path, true
		}
	}
	return "", "", false
}

func (v *FileVersionStore) ContentAtOrBefore(ctx context.Context, projectID, path string, rev int) (string, bool, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	best := -1
	var content string
	for _, version := range v.store.versions {
		pid, p, ok := v.pathOf(version)
		if !ok || pid != projectID || p != path {
			continue
		}
		n := v.revisionNumberOf(version)
		if n <= rev && n > best {
			best = n
			content = version.Content
		}
	}
	if best < 0 {
		return "", false, nil
	}
	return content, true, nil
}

func (v *FileVersionStore) AllAtOrBefore(ctx context.Context, projectID string, rev int) (map[string]string, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	best := make(map[string]int)
	contents := make(map[string]string)
	for _, version := range v.store.versions {
		pid, path, ok := v.pathOf(version)
		if !ok || pid != projectID {
			continue
		}
		n := v.revisionNumberOf(version)
		if n > rev {
			continue
		}
		if prev, ok := best[path]; !ok || n > prev {
			best[path] = n
			contents[path] = version.Content
		}
	}
	return contents, nil
}

func (v *FileVersionStore) AllLatestExcluding(ctx context.Context, projectID, excludePath string) (map[string]string, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	best := make(map[string]int)
	contents := make(map[string]string)
	for _, version := range v.store.versions {
		pid, path, ok := v.pathOf(version)
		if !ok || pid != projectID || path == excludePath {
			continue
		}
		n := v.revisionNumberOf(version)
		if prev, ok := best[path]; !ok || n > prev {
			best[path] = n
			contents[path] = version.Content
		}
	}
	return contents, nil
}
