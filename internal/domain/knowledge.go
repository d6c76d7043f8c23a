package domain

import "time"

// Knowledge is the denormalized view of a post served to clients: the post
// itself, its resolved tag names and its comments.
type Knowledge struct {
	ID           int64              `json:"id"`
	Title        string             `json:"title"`
	URL          string             `json:"url"`
	Comment      string             `json:"comment"`
	Tags         []string           `json:"tags"`
	PostedAt     time.Time          `json:"postedAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	PostedBy     string             `json:"postedBy"`
	Comments     []KnowledgeComment `json:"comments"`
	ThumbnailURL string             `json:"thumbnailUrl"`
	Likes        int                `json:"likes"`
	Category     string             `json:"category"`
	Status       string             `json:"status"`
	Metadata     Metadata           `json:"metadata"`
}

// KnowledgeComment is a comment as embedded in a Knowledge record.
type KnowledgeComment struct {
	ID        int64             `json:"id"`
	Text      string            `json:"text"`
	Author    string            `json:"author"`
	PostedAt  time.Time         `json:"postedAt"`
	Reactions []ReactionSummary `json:"reactions"`
}
