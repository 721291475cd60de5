package persistence

import "time"

// DraftRecord is a stored draft. Body holds the draft document as produced by the
// application layer; the other columns exist for listing and housekeeping.
type DraftRecord struct {
	ID        string
	Action    string
	Name      string
	Body      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
