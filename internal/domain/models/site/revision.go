package site

import (
	"time"
)

// Revision is an immutable, numbered snapshot boundary for a project's files.
// Revision numbers are strictly unique per project; gaps are allowed,
// duplicates are not. Rows are never mutated or deleted.
type Revision struct {
	ID             string    `json:"id" db:"id"`
	ProjectID      string    `json:"project_id" db:"project_id"`
	RevisionNumber int       `json:"revision_number" db:"revision_number"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
