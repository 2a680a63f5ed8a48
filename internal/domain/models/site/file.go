package site

import (
	"time"
)

// FileRole classifies a file by its destination path convention.
type FileRole string

const (
	RoleLayout  FileRole = "layout"  // root document / entry component
	RolePage    FileRole = "page"    // under a "pages" namespace
	RoleSection FileRole = "section" // under a "sections" namespace
	RoleOther   FileRole = "other"
)

// IsFragment reports whether files of this role are embedded inside a larger
// document tree and therefore must not contain their own document root.
func (r FileRole) IsFragment() bool {
	return r == RolePage || r == RoleSection
}

// File is a stable logical path identity within a project, independent of
// content. The (project_id, path) pair is unique; upserts only touch the
// role and timestamp.
type File struct {
	ID        string    `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	Path      string    `json:"path" db:"path"`
	Role      FileRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
