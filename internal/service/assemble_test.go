package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/store"
)

var t0 = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func sampleSnapshot() *store.Snapshot {
	return &store.Snapshot{
		Posts: []domain.Post{
			{
				ID: 1, Category: "article", Title: "Go generics", Content: "Type parameters in practice",
				TagsCache: []string{"stale"}, PostedBy: "ann", PostedAt: t0, UpdatedAt: t0, LikesCount: 2,
				Status: "open", Metadata: domain.Metadata{"url": "https://go.dev/doc/tutorial/generics"},
			},
			{
				ID: 2, Category: "showcase", Title: "Dashboard", Content: "Internal metrics board",
				TagsCache: []string{"ops", "grafana"}, PostedBy: "bo", PostedAt: t0, UpdatedAt: t0,
				Status: "published", Metadata: domain.Metadata{"url": "", "demoUrl": "https://demo.example.com"},
			},
		},
		Tags: []domain.Tag{
			{ID: 10, Name: "Go", Slug: "go"},
			{ID: 11, Name: "Generics", Slug: "generics"},
		},
		Links: []domain.PostTag{
			{PostID: 1, TagID: 10},
			{PostID: 1, TagID: 99},
			{PostID: 1, TagID: 11},
		},
		Comments: []domain.Comment{
			{ID: 1, PostID: 1, Author: "cy", Content: "first", PostedAt: t0},
			{ID: 2, PostID: 2, Author: "di", Content: "nice", PostedAt: t0},
			{ID: 3, PostID: 1, Author: "ed", Content: "second", PostedAt: t0.Add(time.Hour)},
		},
		Reactions: []domain.Reaction{
			{CommentID: 1, Emoji: "👍", ClientID: "c1"},
			{CommentID: 1, Emoji: "🎉", ClientID: "c2"},
			{CommentID: 1, Emoji: "👍", ClientID: "c3"},
		},
	}
}

func TestAssemble_JoinsTagsAndComments(t *testing.T) {
	list := Assemble(sampleSnapshot())
	require.Len(t, list, 2)

	first := list[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, []string{"Go", "Generics"}, first.Tags, "join wins over tagsCache, unknown tag ids skipped")
	assert.Equal(t, "https://go.dev/doc/tutorial/generics", first.URL)
	assert.Equal(t, "Type parameters in practice", first.Comment)
	assert.Equal(t, 2, first.Likes)

	require.Len(t, first.Comments, 2)
	assert.Equal(t, "first", first.Comments[0].Text)
	assert.Equal(t, "second", first.Comments[1].Text)
	assert.Equal(t, []domain.ReactionSummary{
		{Emoji: "👍", Count: 2, Reactors: []string{"c1", "c3"}},
		{Emoji: "🎉", Count: 1, Reactors: []string{"c2"}},
	}, first.Comments[0].Reactions)
	assert.Empty(t, first.Comments[1].Reactions)
}

func TestAssemble_FallsBackToTagsCache(t *testing.T) {
	list := Assemble(sampleSnapshot())

	second := list[1]
	assert.Equal(t, []string{"ops", "grafana"}, second.Tags)
	assert.Equal(t, "https://demo.example.com", second.URL)
	require.Len(t, second.Comments, 1)
}

func TestAssemble_EmptyCollectionsAreNotNil(t *testing.T) {
	snap := &store.Snapshot{Posts: []domain.Post{{ID: 5, Title: "bare"}}}

	list := Assemble(snap)
	require.Len(t, list, 1)

	data, err := json.Marshal(list[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tags":[]`)
	assert.Contains(t, string(data), `"comments":[]`)
	assert.Contains(t, string(data), `"metadata":{}`)
}

func TestAssemble_IsDeterministicAndNonMutating(t *testing.T) {
	snap := sampleSnapshot()
	before, err := json.Marshal(snap)
	require.NoError(t, err)

	first, err := json.Marshal(Assemble(snap))
	require.NoError(t, err)
	second, err := json.Marshal(Assemble(snap))
	require.NoError(t, err)

	after, err := json.Marshal(snap)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, string(before), string(after))
}

func TestAssemble_ResultDoesNotAliasInput(t *testing.T) {
	snap := sampleSnapshot()
	list := Assemble(snap)

	list[1].Tags[0] = "changed"
	list[0].Metadata["url"] = "changed"

	assert.Equal(t, "ops", snap.Posts[1].TagsCache[0])
	assert.Equal(t, "https://go.dev/doc/tutorial/generics", snap.Posts[0].Metadata["url"])
}

func TestAssemble_NilSnapshot(t *testing.T) {
	assert.Empty(t, Assemble(nil))
}
