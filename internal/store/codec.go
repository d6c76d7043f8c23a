package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/sheet"
	"github.com/knowledgeboard/knowledge-server/internal/util"
)

// dateLayouts are tried in order when a date cell holds a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// Decoders never fail: a row whose key columns are missing or malformed
// yields ok=false and is skipped by the caller. Dates that cannot be parsed
// fall back to now; JSON sub-fields fall back to empty values.

// DecodePost converts a Posts row. The id must be a positive integer.
func DecodePost(row sheet.Row, now time.Time) (domain.Post, bool) {
	id, ok := cellID(row.Cell(postColID))
	if !ok {
		return domain.Post{}, false
	}

	likes, _ := cellInt(row.Cell(postColLikesCount))
	if likes < 0 {
		likes = 0
	}

	return domain.Post{
		ID:           id,
		Category:     orDefault(cellString(row.Cell(postColCategory)), domain.DefaultCategory),
		Title:        cellString(row.Cell(postColTitle)),
		Content:      cellString(row.Cell(postColContent)),
		TagsCache:    cellStrings(row.Cell(postColTagsCache)),
		PostedBy:     cellString(row.Cell(postColPostedBy)),
		PostedAt:     cellTime(row.Cell(postColPostedAt), now),
		UpdatedAt:    cellTime(row.Cell(postColUpdatedAt), now),
		LikesCount:   int(likes),
		ThumbnailURL: cellString(row.Cell(postColThumbnailURL)),
		Status:       orDefault(cellString(row.Cell(postColStatus)), domain.DefaultStatus),
		Metadata:     cellObject(row.Cell(postColMetadata)),
	}, true
}

// EncodePost converts a post into a Posts row.
func EncodePost(p domain.Post) sheet.Row {
	return sheet.Row{
		p.ID,
		orDefault(p.Category, domain.DefaultCategory),
		p.Title,
		p.Content,
		encodeJSON(nonNilStrings(p.TagsCache)),
		p.PostedBy,
		p.PostedAt,
		p.UpdatedAt,
		int64(p.LikesCount),
		p.ThumbnailURL,
		orDefault(p.Status, domain.DefaultStatus),
		encodeJSON(nonNilMetadata(p.Metadata)),
	}
}

// DecodeTag converts a Tags row. A tag needs an id and a name; a blank slug
// is derived from the name.
func DecodeTag(row sheet.Row, now time.Time) (domain.Tag, bool) {
	id, ok := cellID(row.Cell(tagColID))
	if !ok {
		return domain.Tag{}, false
	}
	name := strings.TrimSpace(cellString(row.Cell(tagColName)))
	if name == "" {
		return domain.Tag{}, false
	}
	slug := cellString(row.Cell(tagColSlug))
	if slug == "" {
		slug = util.NormalizeTagSlug(name)
	}

	return domain.Tag{
		ID:        id,
		Name:      name,
		Slug:      slug,
		Color:     cellString(row.Cell(tagColColor)),
		Aliases:   cellStrings(row.Cell(tagColAliases)),
		CreatedAt: cellTime(row.Cell(tagColCreatedAt), now),
	}, true
}

// EncodeTag converts a tag into a Tags row.
func EncodeTag(t domain.Tag) sheet.Row {
	return sheet.Row{
		t.ID,
		t.Name,
		t.Slug,
		t.Color,
		encodeJSON(nonNilStrings(t.Aliases)),
		t.CreatedAt,
	}
}

// DecodePostTag converts a PostTags row. Both ids must be positive integers.
func DecodePostTag(row sheet.Row, now time.Time) (domain.PostTag, bool) {
	postID, ok := cellID(row.Cell(postTagColPostID))
	if !ok {
		return domain.PostTag{}, false
	}
	tagID, ok := cellID(row.Cell(postTagColTagID))
	if !ok {
		return domain.PostTag{}, false
	}
	return domain.PostTag{
		PostID:    postID,
		TagID:     tagID,
		CreatedAt: cellTime(row.Cell(postTagColCreatedAt), now),
	}, true
}

// EncodePostTag converts a link into a PostTags row.
func EncodePostTag(l domain.PostTag) sheet.Row {
	return sheet.Row{l.PostID, l.TagID, l.CreatedAt}
}

// DecodeComment converts a Comments row. A blank author becomes the
// anonymous default.
func DecodeComment(row sheet.Row, now time.Time) (domain.Comment, bool) {
	id, ok := cellID(row.Cell(commentColID))
	if !ok {
		return domain.Comment{}, false
	}
	postID, ok := cellID(row.Cell(commentColPostID))
	if !ok {
		return domain.Comment{}, false
	}
	return domain.Comment{
		ID:       id,
		PostID:   postID,
		Author:   orDefault(cellString(row.Cell(commentColAuthor)), domain.DefaultAuthor),
		Content:  cellString(row.Cell(commentColContent)),
		PostedAt: cellTime(row.Cell(commentColPostedAt), now),
	}, true
}

// EncodeComment converts a comment into a Comments row.
func EncodeComment(c domain.Comment) sheet.Row {
	return sheet.Row{c.ID, c.PostID, c.Author, c.Content, c.PostedAt}
}

// DecodeLike converts a Likes row.
func DecodeLike(row sheet.Row, now time.Time) (domain.Like, bool) {
	clientID := strings.TrimSpace(cellString(row.Cell(likeColClientID)))
	if clientID == "" {
		return domain.Like{}, false
	}
	postID, ok := cellID(row.Cell(likeColPostID))
	if !ok {
		return domain.Like{}, false
	}
	return domain.Like{
		ClientID: clientID,
		PostID:   postID,
		LikedAt:  cellTime(row.Cell(likeColLikedAt), now),
	}, true
}

// EncodeLike converts a like into a Likes row.
func EncodeLike(l domain.Like) sheet.Row {
	return sheet.Row{l.ClientID, l.PostID, l.LikedAt}
}

// DecodeReaction converts a CommentReactions row.
func DecodeReaction(row sheet.Row, now time.Time) (domain.Reaction, bool) {
	commentID, ok := cellID(row.Cell(reactionColCommentID))
	if !ok {
		return domain.Reaction{}, false
	}
	emoji := strings.TrimSpace(cellString(row.Cell(reactionColEmoji)))
	clientID := strings.TrimSpace(cellString(row.Cell(reactionColClientID)))
	if emoji == "" || clientID == "" {
		return domain.Reaction{}, false
	}
	return domain.Reaction{
		CommentID: commentID,
		Emoji:     emoji,
		ClientID:  clientID,
		ReactedAt: cellTime(row.Cell(reactionColReactedAt), now),
	}, true
}

// EncodeReaction converts a reaction into a CommentReactions row.
func EncodeReaction(r domain.Reaction) sheet.Row {
	return sheet.Row{r.CommentID, r.Emoji, r.ClientID, r.ReactedAt}
}

// cellString renders any cell as text. Numbers print without a trailing ".0".
func cellString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case int:
		return strconv.Itoa(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case bool:
		return strconv.FormatBool(vv)
	case time.Time:
		return vv.Format(time.RFC3339)
	default:
		return fmt.Sprint(vv)
	}
}

// cellInt reads an integral number from a numeric or string cell.
func cellInt(v any) (int64, bool) {
	switch vv := v.(type) {
	case int:
		return int64(vv), true
	case int64:
		return vv, true
	case float64:
		if math.IsNaN(vv) || math.IsInf(vv, 0) || vv != math.Trunc(vv) {
			return 0, false
		}
		return int64(vv), true
	case json.Number:
		return cellInt(string(vv))
	case string:
		s := strings.TrimSpace(vv)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return cellInt(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

// cellID reads a primary or foreign key: a positive integer.
func cellID(v any) (int64, bool) {
	n, ok := cellInt(v)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}

func cellTime(v any, now time.Time) time.Time {
	switch vv := v.(type) {
	case time.Time:
		if vv.IsZero() {
			return now
		}
		return vv
	case string:
		s := strings.TrimSpace(vv)
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t
			}
		}
	}
	return now
}

// cellStrings decodes a JSON array cell. Scalars inside the array are kept as
// text; anything else yields an empty slice.
func cellStrings(v any) []string {
	out := []string{}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return out
	}
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return out
	}
	for _, item := range raw {
		switch iv := item.(type) {
		case string:
			out = append(out, iv)
		case float64, bool:
			out = append(out, cellString(iv))
		}
	}
	return out
}

// cellObject decodes a JSON object cell, or returns an empty map.
func cellObject(v any) domain.Metadata {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return domain.Metadata{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return domain.Metadata{}
	}
	return domain.Metadata(m)
}

func encodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMetadata(m domain.Metadata) domain.Metadata {
	if m == nil {
		return domain.Metadata{}
	}
	return m
}
