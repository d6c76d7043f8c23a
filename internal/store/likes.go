package store

import (
	"context"
	"fmt"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
)

// Likes returns every well-formed like in storage order.
func (s *Store) Likes(ctx context.Context) ([]domain.Like, error) {
	rows, err := s.rows(ctx, TableLikes)
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, s.now(), DecodeLike), nil
}

// HasLike reports whether clientID already liked postID.
func (s *Store) HasLike(ctx context.Context, clientID string, postID int64) (bool, error) {
	likes, err := s.Likes(ctx)
	if err != nil {
		return false, err
	}
	for _, l := range likes {
		if l.ClientID == clientID && l.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

// AddLike appends a like row.
func (s *Store) AddLike(ctx context.Context, like domain.Like) error {
	if err := s.sheets.Append(ctx, TableLikes, EncodeLike(like)); err != nil {
		return fmt.Errorf("append like: %w", err)
	}
	return nil
}
