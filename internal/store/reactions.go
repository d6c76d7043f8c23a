package store

import (
	"context"
	"fmt"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
)

// Reactions returns every well-formed comment reaction in storage order.
func (s *Store) Reactions(ctx context.Context) ([]domain.Reaction, error) {
	rows, err := s.rows(ctx, TableReactions)
	if err != nil {
		return nil, err
	}
	return decodeAll(rows, s.now(), DecodeReaction), nil
}

// ReactionsOf returns the reactions on one comment in storage order.
func (s *Store) ReactionsOf(ctx context.Context, commentID int64) ([]domain.Reaction, error) {
	all, err := s.Reactions(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Reaction{}
	for _, r := range all {
		if r.CommentID == commentID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ToggleReaction removes every row matching (commentId, emoji, clientId) if
// any exist, otherwise appends r. It reports whether a row was added.
func (s *Store) ToggleReaction(ctx context.Context, r domain.Reaction) (bool, error) {
	rows, err := s.rows(ctx, TableReactions)
	if err != nil {
		return false, err
	}

	var existing []int
	now := s.now()
	for i, row := range rows {
		got, ok := DecodeReaction(row, now)
		if ok && got.CommentID == r.CommentID && got.Emoji == r.Emoji && got.ClientID == r.ClientID {
			existing = append(existing, i)
		}
	}

	if len(existing) > 0 {
		if err := s.sheets.Delete(ctx, TableReactions, existing...); err != nil {
			return false, fmt.Errorf("remove reaction: %w", err)
		}
		return false, nil
	}

	if err := s.sheets.Append(ctx, TableReactions, EncodeReaction(r)); err != nil {
		return false, fmt.Errorf("append reaction: %w", err)
	}
	return true, nil
}

func (s *Store) deleteReactionsOf(ctx context.Context, commentID int64) error {
	rows, err := s.rows(ctx, TableReactions)
	if err != nil {
		return err
	}
	var doomed []int
	for i, row := range rows {
		if id, ok := cellID(row.Cell(reactionColCommentID)); ok && id == commentID {
			doomed = append(doomed, i)
		}
	}
	if len(doomed) == 0 {
		return nil
	}
	if err := s.sheets.Delete(ctx, TableReactions, doomed...); err != nil {
		return fmt.Errorf("delete reactions of comment %d: %w", commentID, err)
	}
	return nil
}
