package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/knowledgeboard/knowledge-server/internal/category"
	"github.com/knowledgeboard/knowledge-server/internal/content"
	"github.com/knowledgeboard/knowledge-server/internal/domain"
	kberrors "github.com/knowledgeboard/knowledge-server/internal/errors"
	"github.com/knowledgeboard/knowledge-server/internal/store"
	"github.com/knowledgeboard/knowledge-server/internal/validation"
)

// KnowledgeService serves the assembled knowledge list and performs every
// mutation. Writers in this process are serialized; other processes sharing
// the same tables can still interleave with them.
type KnowledgeService struct {
	store      *store.Store
	cache      *ListCache
	categories *category.Registry
	validator  *validation.Validator
	logger     *slog.Logger

	mu          sync.Mutex
	newClientID func() string
}

// NewKnowledgeService creates a new knowledge service.
func NewKnowledgeService(
	st *store.Store,
	listCache *ListCache,
	categories *category.Registry,
	validator *validation.Validator,
	logger *slog.Logger,
) *KnowledgeService {
	return &KnowledgeService{
		store:      st,
		cache:      listCache,
		categories: categories,
		validator:  validator,
		logger:     logger,
		newClientID: func() string {
			return "anonymous-" + uuid.NewString()
		},
	}
}

// ReferenceData is what the post form needs: known tags and category configs.
type ReferenceData struct {
	Tags       []domain.Tag      `json:"tags"`
	Categories []category.Config `json:"categories"`
}

// List returns the knowledge records matching f. The unfiltered list is
// served from cache when possible and cached after a rebuild.
func (s *KnowledgeService) List(ctx context.Context, f Filters) ([]domain.Knowledge, error) {
	list, ok := s.cache.Get(ctx)
	if !ok {
		snap, err := s.store.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("load tables: %w", err)
		}
		list = Assemble(snap)
		s.cache.Put(ctx, list)
	}
	if f.IsZero() {
		return list, nil
	}
	return ApplyFilters(list, f), nil
}

// Get returns one record from the list. It is never fresher than List.
func (s *KnowledgeService) Get(ctx context.Context, id int64) (*domain.Knowledge, error) {
	list, err := s.List(ctx, Filters{})
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", store.ErrPostNotFound, id)
}

// ReferenceData returns every tag record and the current category set.
func (s *KnowledgeService) ReferenceData(ctx context.Context) (*ReferenceData, error) {
	tags, err := s.store.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	return &ReferenceData{Tags: tags, Categories: s.categories.All()}, nil
}

// Add creates a post and its tag links and returns the new id.
func (s *KnowledgeService) Add(ctx context.Context, in PostInput) (int64, error) {
	if err := s.validator.Validate(in); err != nil {
		return 0, err
	}
	post, err := s.preparePost(in, "", "")
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.invalidate(ctx)

	tagIDs, tagNames, err := s.store.ResolveTags(ctx, NormalizeTags(in.Tags))
	if err != nil {
		return 0, s.mutationFailed("add post", err)
	}

	now := s.store.Now()
	post.TagsCache = tagNames
	post.PostedAt = now
	post.UpdatedAt = now
	post.LikesCount = 0

	if err := s.store.CreatePost(ctx, &post); err != nil {
		return 0, s.mutationFailed("add post", err)
	}
	if err := s.store.AddPostTags(ctx, post.ID, tagIDs); err != nil {
		return 0, s.mutationFailed("link tags", err, "post_id", post.ID)
	}

	s.logger.Info("post added", "post_id", post.ID, "category", post.Category, "tags", len(tagIDs))
	return post.ID, nil
}

// Update overwrites a post and replaces its tag links. postedAt and the like
// counter are kept from the stored row.
func (s *KnowledgeService) Update(ctx context.Context, id int64, in PostInput) (int64, error) {
	if err := s.validator.Validate(in); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.GetPost(ctx, id)
	if err != nil {
		return 0, s.mutationFailed("update post", err, "post_id", id)
	}

	post, err := s.preparePost(in, existing.Category, existing.Status)
	if err != nil {
		return 0, err
	}

	defer s.invalidate(ctx)

	tagIDs, tagNames, err := s.store.ResolveTags(ctx, NormalizeTags(in.Tags))
	if err != nil {
		return 0, s.mutationFailed("update post", err, "post_id", id)
	}

	post.ID = id
	post.TagsCache = tagNames
	post.UpdatedAt = s.store.Now()

	if err := s.store.UpdatePost(ctx, &post); err != nil {
		return 0, s.mutationFailed("update post", err, "post_id", id)
	}
	if err := s.store.ReplacePostTags(ctx, id, tagIDs); err != nil {
		return 0, s.mutationFailed("replace tags", err, "post_id", id)
	}

	s.logger.Info("post updated", "post_id", id, "tags", len(tagIDs))
	return id, nil
}

// AddComment appends a comment to a post and bumps the post's updatedAt.
func (s *KnowledgeService) AddComment(ctx context.Context, postID int64, in CommentInput) (*domain.Comment, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, s.mutationFailed("add comment", err, "post_id", postID)
	}

	defer s.invalidate(ctx)

	now := s.store.Now()
	c := &domain.Comment{
		PostID:   postID,
		Author:   orDefault(in.Author, domain.DefaultAuthor),
		Content:  in.Text,
		PostedAt: now,
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, s.mutationFailed("add comment", err, "post_id", postID)
	}
	if err := s.store.TouchPost(ctx, postID, now); err != nil {
		return nil, s.mutationFailed("touch post", err, "post_id", postID)
	}

	s.logger.Info("comment added", "post_id", postID, "comment_id", c.ID)
	return c, nil
}

// DeleteComment removes a comment of a post with its reactions and bumps the
// post's updatedAt.
func (s *KnowledgeService) DeleteComment(ctx context.Context, commentID, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return s.mutationFailed("delete comment", err, "post_id", postID)
	}

	defer s.invalidate(ctx)

	if err := s.store.DeleteComment(ctx, commentID, postID); err != nil {
		return s.mutationFailed("delete comment", err, "post_id", postID, "comment_id", commentID)
	}
	if err := s.store.TouchPost(ctx, postID, s.store.Now()); err != nil {
		return s.mutationFailed("touch post", err, "post_id", postID)
	}

	s.logger.Info("comment deleted", "post_id", postID, "comment_id", commentID)
	return nil
}

// AddLike records a like from clientID and returns the post's like count.
// A client that already liked the post gets the current count back and
// nothing is written. An empty clientID is replaced by a fresh anonymous id,
// so anonymous likes always count.
func (s *KnowledgeService) AddLike(ctx context.Context, postID int64, clientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return 0, s.mutationFailed("add like", err, "post_id", postID)
	}

	if clientID != "" {
		liked, err := s.store.HasLike(ctx, clientID, postID)
		if err != nil {
			return 0, s.mutationFailed("add like", err, "post_id", postID)
		}
		if liked {
			return post.LikesCount, nil
		}
	} else {
		clientID = s.newClientID()
	}

	defer s.invalidate(ctx)

	like := domain.Like{ClientID: clientID, PostID: postID, LikedAt: s.store.Now()}
	if err := s.store.AddLike(ctx, like); err != nil {
		return 0, s.mutationFailed("add like", err, "post_id", postID)
	}

	count := post.LikesCount + 1
	if err := s.store.SetLikesCount(ctx, postID, count); err != nil {
		return 0, s.mutationFailed("count like", err, "post_id", postID)
	}

	s.logger.Info("like added", "post_id", postID, "likes", count)
	return count, nil
}

// ToggleCommentReaction adds the reaction if the client has not reacted with
// that emoji yet and removes it otherwise. It returns the comment's
// aggregated reactions afterwards.
func (s *KnowledgeService) ToggleCommentReaction(ctx context.Context, commentID int64, in ReactionInput) ([]domain.ReactionSummary, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetComment(ctx, commentID); err != nil {
		return nil, s.mutationFailed("toggle reaction", err, "comment_id", commentID)
	}

	defer s.invalidate(ctx)

	added, err := s.store.ToggleReaction(ctx, domain.Reaction{
		CommentID: commentID,
		Emoji:     in.Emoji,
		ClientID:  in.ClientID,
		ReactedAt: s.store.Now(),
	})
	if err != nil {
		return nil, s.mutationFailed("toggle reaction", err, "comment_id", commentID)
	}

	reactions, err := s.store.ReactionsOf(ctx, commentID)
	if err != nil {
		return nil, s.mutationFailed("load reactions", err, "comment_id", commentID)
	}

	s.logger.Info("reaction toggled", "comment_id", commentID, "emoji", in.Emoji, "added", added)
	return domain.SummarizeReactions(reactions), nil
}

// preparePost builds the post row values the caller controls.
// currentCategory and currentStatus are the stored values on update.
func (s *KnowledgeService) preparePost(in PostInput, currentCategory, currentStatus string) (domain.Post, error) {
	key := orDefault(in.Category, currentCategory)
	if key == "" {
		key = s.defaultCategory()
	}
	cfg, ok := s.categories.Get(key)
	if !ok {
		return domain.Post{}, kberrors.Validationf("unknown category %q", key)
	}

	return domain.Post{
		Category:     cfg.Key,
		Title:        in.Title,
		Content:      content.ToMarkdown(in.Comment, in.ContentFormat),
		PostedBy:     orDefault(in.PostedBy, domain.DefaultAuthor),
		ThumbnailURL: in.ThumbnailURL,
		Status:       orDefault(in.Status, orDefault(currentStatus, orDefault(cfg.DefaultStatus, domain.DefaultStatus))),
		Metadata:     buildMetadata(in),
	}, nil
}

// defaultCategory is "article" when configured, else the first category.
func (s *KnowledgeService) defaultCategory() string {
	if _, ok := s.categories.Get(domain.DefaultCategory); ok {
		return domain.DefaultCategory
	}
	if keys := s.categories.Keys(); len(keys) > 0 {
		return keys[0]
	}
	return domain.DefaultCategory
}

func (s *KnowledgeService) invalidate(ctx context.Context) {
	s.cache.Invalidate(context.WithoutCancel(ctx))
}

// mutationFailed logs err and returns it wrapped with op. Not-found errors
// are expected client mistakes and log at Warn.
func (s *KnowledgeService) mutationFailed(op string, err error, args ...any) error {
	level := slog.LevelError
	if kberrors.Is(err, kberrors.ErrNotFound) {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, op+" failed", append(args, "error", err)...)
	return fmt.Errorf("%s: %w", op, err)
}
