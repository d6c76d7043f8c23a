package domain

import "time"

// Default field values applied when a stored row leaves them blank.
const (
	DefaultCategory = "article"
	DefaultStatus   = "open"
	DefaultAuthor   = "Anonymous"
)

// Metadata is the free-form, category-specific attribute bag attached to a post.
// Values are whatever the JSON decoder produced: strings, string arrays, numbers.
type Metadata map[string]any

// primaryURLKeys are checked in order when deriving a post's primary URL.
var primaryURLKeys = []string{"url", "primaryUrl", "demoUrl", "referenceUrl"}

// String returns the value at key if it is a non-empty string.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// PrimaryURL returns the first non-empty link-like field.
func (m Metadata) PrimaryURL() string {
	for _, key := range primaryURLKeys {
		if v := m.String(key); v != "" {
			return v
		}
	}
	return ""
}

// Clone returns a shallow copy. Nested slices are copied so callers can
// append without aliasing the original.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case []any:
			out[k] = append([]any(nil), vv...)
		case []string:
			out[k] = append([]string(nil), vv...)
		default:
			out[k] = v
		}
	}
	return out
}

// Post is a knowledge entry as persisted in the Posts table.
type Post struct {
	ID           int64
	Category     string
	Title        string
	Content      string
	TagsCache    []string // Denormalized tag names; the PostTags join is authoritative.
	PostedBy     string
	PostedAt     time.Time
	UpdatedAt    time.Time
	LikesCount   int
	ThumbnailURL string
	Status       string
	Metadata     Metadata
}
