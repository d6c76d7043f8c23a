package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeReactions(t *testing.T) {
	reactions := []Reaction{
		{CommentID: 1, Emoji: "👍", ClientID: "a"},
		{CommentID: 1, Emoji: "🎉", ClientID: "b"},
		{CommentID: 1, Emoji: "👍", ClientID: "c"},
	}

	got := SummarizeReactions(reactions)

	assert.Equal(t, []ReactionSummary{
		{Emoji: "👍", Count: 2, Reactors: []string{"a", "c"}},
		{Emoji: "🎉", Count: 1, Reactors: []string{"b"}},
	}, got)
}

func TestSummarizeReactions_Empty(t *testing.T) {
	got := SummarizeReactions(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMetadata_PrimaryURL(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want string
	}{
		{"nil", nil, ""},
		{"url wins", Metadata{"url": "https://a", "demoUrl": "https://b"}, "https://a"},
		{"empty url skipped", Metadata{"url": "", "primaryUrl": "https://p"}, "https://p"},
		{"demo before reference", Metadata{"referenceUrl": "https://r", "demoUrl": "https://d"}, "https://d"},
		{"non-string ignored", Metadata{"url": 42, "referenceUrl": "https://r"}, "https://r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.PrimaryURL())
		})
	}
}

func TestMetadata_CloneDoesNotAlias(t *testing.T) {
	orig := Metadata{"skills": []any{"go"}, "url": "https://x"}
	clone := orig.Clone()

	clone["url"] = "changed"
	clone["skills"] = append(clone["skills"].([]any), "rust")

	assert.Equal(t, "https://x", orig["url"])
	assert.Equal(t, []any{"go"}, orig["skills"])
}
