package domain

import "time"

// Comment is a reply attached to a post.
type Comment struct {
	ID       int64
	PostID   int64
	Author   string
	Content  string
	PostedAt time.Time
}

// Like records that a client liked a post.
type Like struct {
	ClientID string
	PostID   int64
	LikedAt  time.Time
}

// Reaction records a single emoji reaction by one client on one comment.
type Reaction struct {
	CommentID int64
	Emoji     string
	ClientID  string
	ReactedAt time.Time
}

// ReactionSummary aggregates reactions on a comment by emoji.
type ReactionSummary struct {
	Emoji    string   `json:"emoji"`
	Count    int      `json:"count"`
	Reactors []string `json:"reactors"`
}

// SummarizeReactions groups reactions by emoji in first-seen order.
func SummarizeReactions(reactions []Reaction) []ReactionSummary {
	out := []ReactionSummary{}
	index := make(map[string]int)
	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(out)
			index[r.Emoji] = i
			out = append(out, ReactionSummary{Emoji: r.Emoji, Reactors: []string{}})
		}
		out[i].Count++
		out[i].Reactors = append(out[i].Reactors, r.ClientID)
	}
	return out
}
