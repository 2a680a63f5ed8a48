package site

import (
	"time"
)

// FileVersion is the immutable content of a File as of a specific Revision.
// Rows are pure appends: never edited, never removed, no dedup. History is
// fully reconstructable from any past revision number.
type FileVersion struct {
	ID         string    `json:"id" db:"id"`
	FileID     string    `json:"file_id" db:"file_id"`
	RevisionID string    `json:"revision_id" db:"revision_id"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
