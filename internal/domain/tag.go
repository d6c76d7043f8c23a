package domain

import "time"

// Tag is a shared label. Slug is the dedup key; Name keeps the casing of
// whoever created the tag first.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color,omitempty"`
	Aliases   []string  `json:"aliases"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostTag links a post to a tag. The store does not enforce uniqueness.
type PostTag struct {
	PostID    int64
	TagID     int64
	CreatedAt time.Time
}
