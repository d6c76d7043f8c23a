package store

import (
	"context"
	"fmt"
	"time"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/sheet"
)

// Posts returns every well-formed post in storage order.
func (s *Store) Posts(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.rows(ctx, TablePosts)
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, s.now(), DecodePost), nil
}

// GetPost finds a post by id.
func (s *Store) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	_, post, _, err := s.findPost(ctx, id)
	return post, err
}

// CreatePost assigns the next post id and appends the row. PostedAt,
// UpdatedAt and LikesCount are expected to be set by the caller.
func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	rows, err := s.rows(ctx, TablePosts)
	if err != nil {
		return err
	}
	p.ID = nextID(rows, postColID)

	if err := s.sheets.Append(ctx, TablePosts, EncodePost(*p)); err != nil {
		return fmt.Errorf("append post: %w", err)
	}
	return nil
}

// UpdatePost overwrites the stored post with p. postedAt and likesCount are
// copied verbatim from the existing row, whatever p says; p is updated to
// reflect the values that were kept.
func (s *Store) UpdatePost(ctx context.Context, p *domain.Post) error {
	index, existing, raw, err := s.findPost(ctx, p.ID)
	if err != nil {
		return err
	}

	p.PostedAt = existing.PostedAt
	p.LikesCount = existing.LikesCount

	row := EncodePost(*p)
	row[postColPostedAt] = raw.Cell(postColPostedAt)
	row[postColLikesCount] = raw.Cell(postColLikesCount)

	if err := s.sheets.Update(ctx, TablePosts, index, row); err != nil {
		return fmt.Errorf("update post %d: %w", p.ID, err)
	}
	return nil
}

// TouchPost sets a post's updatedAt.
func (s *Store) TouchPost(ctx context.Context, id int64, at time.Time) error {
	index, _, _, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sheets.SetCell(ctx, TablePosts, index, postColUpdatedAt, at); err != nil {
		return fmt.Errorf("touch post %d: %w", id, err)
	}
	return nil
}

// SetLikesCount overwrites a post's like counter.
func (s *Store) SetLikesCount(ctx context.Context, id int64, count int) error {
	index, _, _, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sheets.SetCell(ctx, TablePosts, index, postColLikesCount, int64(count)); err != nil {
		return fmt.Errorf("set likes of post %d: %w", id, err)
	}
	return nil
}

// findPost scans the Posts table for id and returns its row index, the
// decoded post and the raw row.
func (s *Store) findPost(ctx context.Context, id int64) (int, domain.Post, sheet.Row, error) {
	rows, err := s.rows(ctx, TablePosts)
	if err != nil {
		return 0, domain.Post{}, nil, err
	}
	now := s.now()
	for i, row := range rows {
		rowID, ok := cellID(row.Cell(postColID))
		if !ok || rowID != id {
			continue
		}
		post, ok := DecodePost(row, now)
		if !ok {
			continue
		}
		return i, post, row, nil
	}
	return 0, domain.Post{}, nil, fmt.Errorf("%w: %d", ErrPostNotFound, id)
}
