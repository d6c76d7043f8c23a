// Package store maps knowledge board records onto the rows of a sheet.Store.
//
// Every read loads whole tables and decodes them with the row codec; lookups
// by id are linear scans. That matches the expected data size: a team
// knowledge base of a few thousand rows.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/sheet"
)

// Store provides typed access to the knowledge tables.
type Store struct {
	sheets sheet.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now for timestamps and decode fallbacks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New wraps sheets and makes sure every table exists with the expected header.
func New(ctx context.Context, sheets sheet.Store, logger *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{sheets: sheets, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates missing tables and repairs their headers.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, t := range Schema {
		if err := s.sheets.EnsureTable(ctx, t.Name, t.Header); err != nil {
			return fmt.Errorf("ensure table %s: %w", t.Name, err)
		}
	}
	return nil
}

// Ping reads the Posts header to confirm the backing store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.sheets.Header(ctx, TablePosts)
	return err
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Snapshot is a decoded copy of every table the read path joins.
type Snapshot struct {
	Posts     []domain.Post
	Tags      []domain.Tag
	Links     []domain.PostTag
	Comments  []domain.Comment
	Reactions []domain.Reaction
}

// Snapshot loads and decodes all tables needed to assemble the knowledge list.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	posts, err := s.Posts(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.Tags(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.PostTags(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := s.Comments(ctx)
	if err != nil {
		return nil, err
	}
	reactions, err := s.Reactions(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Posts:     posts,
		Tags:      tags,
		Links:     links,
		Comments:  comments,
		Reactions: reactions,
	}, nil
}

func (s *Store) rows(ctx context.Context, table string) ([]sheet.Row, error) {
	rows, err := s.sheets.Rows(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return rows, nil
}

// decodeAll decodes rows with fn, dropping the ones fn rejects.
func decodeAll[T any](rows []sheet.Row, now time.Time, fn func(sheet.Row, time.Time) (T, bool)) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if v, ok := fn(row, now); ok {
			out = append(out, v)
		}
	}
	return out
}

// nextID returns one more than the largest positive integer in column col.
func nextID(rows []sheet.Row, col int) int64 {
	var maxID int64
	for _, row := range rows {
		if id, ok := cellID(row.Cell(col)); ok && id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}
