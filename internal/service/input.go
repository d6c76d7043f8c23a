package service

import (
	"strings"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
)

// PostInput carries the caller-supplied fields of a new or edited post.
// Comment is the post body.
type PostInput struct {
	Title         string          `json:"title" validate:"required,max=200"`
	URL           string          `json:"url" validate:"max=2048"`
	Comment       string          `json:"comment" validate:"max=100000"`
	ContentFormat string          `json:"contentFormat" validate:"omitempty,oneof=markdown html"`
	Tags          []string        `json:"tags" validate:"max=50,dive,max=64"`
	PostedBy      string          `json:"postedBy" validate:"max=100"`
	ThumbnailURL  string          `json:"thumbnailUrl" validate:"max=2048"`
	Category      string          `json:"category" validate:"max=64"`
	Status        string          `json:"status" validate:"max=64"`
	Metadata      domain.Metadata `json:"metadata"`
}

// CommentInput is a new comment on a post.
type CommentInput struct {
	Text   string `json:"text" validate:"required,max=10000"`
	Author string `json:"author" validate:"max=100"`
}

// ReactionInput toggles one emoji for one client on a comment.
type ReactionInput struct {
	Emoji    string `json:"emoji" validate:"required,max=32"`
	ClientID string `json:"clientId" validate:"required,max=128"`
}

// MutationResult is the outcome of Add and Update as clients see it.
type MutationResult struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ReactionResult is the outcome of a reaction toggle.
type ReactionResult struct {
	Success   bool                     `json:"success"`
	Reactions []domain.ReactionSummary `json:"reactions,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// SplitTags splits a comma-separated tag string.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// NormalizeTags trims names, drops empty ones and removes exact duplicates,
// keeping first occurrences in order. Slug-level dedup happens when tags
// are resolved.
func NormalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// buildMetadata returns {url: in.URL} overlaid by the caller's metadata.
func buildMetadata(in PostInput) domain.Metadata {
	m := domain.Metadata{"url": in.URL}
	for k, v := range in.Metadata {
		m[k] = v
	}
	return m
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
