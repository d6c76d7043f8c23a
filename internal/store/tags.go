package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/sheet"
	"github.com/knowledgeboard/knowledge-server/internal/util"
)

// Tags returns every well-formed tag in storage order.
func (s *Store) Tags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.rows(ctx, TableTags)
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, s.now(), DecodeTag), nil
}

// ResolveTags maps tag names to tag records, creating the ones whose slug is
// not yet known. For each name:
//   - names whose slug is empty are dropped;
//   - names sharing a slug with an earlier name in the same call are dropped;
//   - a known slug resolves to the stored id and stored name;
//   - an unknown slug gets the next id and keeps the input name.
//
// If the table already holds several tags with one slug (two writers created
// it concurrently), the first one in storage order wins.
func (s *Store) ResolveTags(ctx context.Context, names []string) ([]int64, []string, error) {
	rows, err := s.rows(ctx, TableTags)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	bySlug := make(map[string]domain.Tag)
	for _, tag := range decodeAll(rows, now, DecodeTag) {
		if _, dup := bySlug[tag.Slug]; !dup {
			bySlug[tag.Slug] = tag
		}
	}

	next := nextID(rows, tagColID)
	ids := []int64{}
	resolved := []string{}
	seen := make(map[string]bool)
	var created []sheet.Row

	for _, name := range names {
		slug := util.NormalizeTagSlug(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, ok := bySlug[slug]
		if !ok {
			tag = domain.Tag{
				ID:        next,
				Name:      strings.TrimSpace(name),
				Slug:      slug,
				Aliases:   []string{},
				CreatedAt: now,
			}
			next++
			bySlug[slug] = tag
			created = append(created, EncodeTag(tag))
		}
		ids = append(ids, tag.ID)
		resolved = append(resolved, tag.Name)
	}

	if len(created) > 0 {
		if err := s.sheets.Append(ctx, TableTags, created...); err != nil {
			return nil, nil, fmt.Errorf("append tags: %w", err)
		}
		if s.logger != nil {
			s.logger.Info("tags created", "count", len(created))
		}
	}
	return ids, resolved, nil
}

// PostTags returns every well-formed post-tag link in storage order.
func (s *Store) PostTags(ctx context.Context) ([]domain.PostTag, error) {
	rows, err := s.rows(ctx, TablePostTags)
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, s.now(), DecodePostTag), nil
}

// ReplacePostTags deletes every link of postID and inserts one link per tag id.
func (s *Store) ReplacePostTags(ctx context.Context, postID int64, tagIDs []int64) error {
	rows, err := s.rows(ctx, TablePostTags)
	if err != nil {
		return err
	}

	var stale []int
	for i, row := range rows {
		if id, ok := cellID(row.Cell(postTagColPostID)); ok && id == postID {
			stale = append(stale, i)
		}
	}
	if len(stale) > 0 {
		if err := s.sheets.Delete(ctx, TablePostTags, stale...); err != nil {
			return fmt.Errorf("delete links of post %d: %w", postID, err)
		}
	}

	return s.AddPostTags(ctx, postID, tagIDs)
}

// AddPostTags appends one link per tag id.
func (s *Store) AddPostTags(ctx context.Context, postID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	now := s.now()
	links := make([]sheet.Row, len(tagIDs))
	for i, tagID := range tagIDs {
		links[i] = EncodePostTag(domain.PostTag{PostID: postID, TagID: tagID, CreatedAt: now})
	}
	if err := s.sheets.Append(ctx, TablePostTags, links...); err != nil {
		return fmt.Errorf("append links of post %d: %w", postID, err)
	}
	return nil
}
