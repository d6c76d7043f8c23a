package service

import (
	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/store"
)

// Assemble joins the decoded tables into the flattened Knowledge list served
// to clients. Output follows post storage order and comments follow comment
// storage order. Inputs are not modified and nothing in the result aliases them.
//
// A post whose tag links resolve to nothing falls back to its tagsCache
// column, which covers a post row written without its links.
func Assemble(snap *store.Snapshot) []domain.Knowledge {
	if snap == nil {
		return []domain.Knowledge{}
	}

	tagByID := make(map[int64]domain.Tag, len(snap.Tags))
	for _, t := range snap.Tags {
		if _, dup := tagByID[t.ID]; !dup {
			tagByID[t.ID] = t
		}
	}

	tagNames := make(map[int64][]string)
	for _, link := range snap.Links {
		tag, ok := tagByID[link.TagID]
		if !ok {
			continue
		}
		tagNames[link.PostID] = append(tagNames[link.PostID], tag.Name)
	}

	reactions := make(map[int64][]domain.Reaction)
	for _, r := range snap.Reactions {
		reactions[r.CommentID] = append(reactions[r.CommentID], r)
	}

	comments := make(map[int64][]domain.KnowledgeComment)
	for _, c := range snap.Comments {
		comments[c.PostID] = append(comments[c.PostID], domain.KnowledgeComment{
			ID:        c.ID,
			Text:      c.Content,
			Author:    c.Author,
			PostedAt:  c.PostedAt,
			Reactions: domain.SummarizeReactions(reactions[c.ID]),
		})
	}

	out := make([]domain.Knowledge, 0, len(snap.Posts))
	for _, p := range snap.Posts {
		tags := tagNames[p.ID]
		if len(tags) == 0 {
			tags = p.TagsCache
		}

		postComments := comments[p.ID]
		if postComments == nil {
			postComments = []domain.KnowledgeComment{}
		}

		out = append(out, domain.Knowledge{
			ID:           p.ID,
			Title:        p.Title,
			URL:          p.Metadata.PrimaryURL(),
			Comment:      p.Content,
			Tags:         append([]string{}, tags...),
			PostedAt:     p.PostedAt,
			UpdatedAt:    p.UpdatedAt,
			PostedBy:     p.PostedBy,
			Comments:     postComments,
			ThumbnailURL: p.ThumbnailURL,
			Likes:        p.LikesCount,
			Category:     p.Category,
			Status:       p.Status,
			Metadata:     p.Metadata.Clone(),
		})
	}
	return out
}
