package blog

import "time"

// Blogpost statuses. Terminated posts belong to users swept by a
// collaboration shutdown and never show up in public listings.
const (
	StatusDraft      = "draft"
	StatusPublished  = "published"
	StatusTerminated = "terminated"
)

// Blogpost maps to the blogposts table.
type Blogpost struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Banner    *string   `db:"banner" json:"banner,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ValidStatus reports whether s is a known blogpost status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusTerminated:
		return true
	}
	return false
}
