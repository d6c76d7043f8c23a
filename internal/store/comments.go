package store

import (
	"context"
	"fmt"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
)

// Comments returns every well-formed comment in storage order.
func (s *Store) Comments(ctx context.Context) ([]domain.Comment, error) {
	rows, err := s.rows(ctx, TableComments)
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, s.now(), DecodeComment), nil
}

// GetComment finds a comment by id.
func (s *Store) GetComment(ctx context.Context, id int64) (domain.Comment, error) {
	rows, err := s.rows(ctx, TableComments)
	if err != nil {
		return domain.Comment{}, err
	}
	now := s.now()
	for _, row := range rows {
		if c, ok := DecodeComment(row, now); ok && c.ID == id {
			return c, nil
		}
	}
	return domain.Comment{}, fmt.Errorf("%w: %d", ErrCommentNotFound, id)
}

// CreateComment assigns the next comment id and appends the row.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	rows, err := s.rows(ctx, TableComments)
	if err != nil {
		return err
	}
	c.ID = nextID(rows, commentColID)

	if err := s.sheets.Append(ctx, TableComments, EncodeComment(*c)); err != nil {
		return fmt.Errorf("append comment: %w", err)
	}
	return nil
}

// DeleteComment removes the comment with id on postID together with its
// reactions. A comment that exists on a different post is treated as missing.
func (s *Store) DeleteComment(ctx context.Context, id, postID int64) error {
	rows, err := s.rows(ctx, TableComments)
	if err != nil {
		return err
	}

	var doomed []int
	now := s.now()
	for i, row := range rows {
		if c, ok := DecodeComment(row, now); ok && c.ID == id && c.PostID == postID {
			doomed = append(doomed, i)
		}
	}
	if len(doomed) == 0 {
		return fmt.Errorf("%w: %d on post %d", ErrCommentNotFound, id, postID)
	}

	if err := s.sheets.Delete(ctx, TableComments, doomed...); err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return s.deleteReactionsOf(ctx, id)
}
