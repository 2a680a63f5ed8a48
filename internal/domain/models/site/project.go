package site

import (
	"time"
)

// Project is one user's website-building session. Projects are created by
// the chat collaborator; this subsystem only reads and writes under them.
type Project struct {
	ID        string    `json:"id" db:"id"` // opaque, <= 32 chars
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
