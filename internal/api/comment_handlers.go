package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/knowledgeboard/knowledge-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/knowledge/{id}/comments",
		Summary:     "Add comment",
		Description: "Appends a comment to a post. Returns false when the post does not exist or the write fails.",
		Tags:        []string{"Comments"},
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/knowledge/{id}/comments/{commentId}",
		Summary:     "Delete comment",
		Description: "Removes a comment and its reactions. Returns false when the comment is not on that post.",
		Tags:        []string{"Comments"},
	}, s.handleDeleteComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleCommentReaction",
		Method:      http.MethodPost,
		Path:        "/api/v1/comments/{commentId}/reactions",
		Summary:     "Toggle comment reaction",
		Description: "Adds the client's emoji reaction, or removes it if already present, and returns the comment's reactions",
		Tags:        []string{"Comments"},
	}, s.handleToggleReaction)
}

// AddCommentInput contains the comment to append.
type AddCommentInput struct {
	ID   int64 `path:"id" minimum:"1" doc:"Post ID"`
	Body struct {
		Text   string `json:"text" doc:"Comment text"`
		Author string `json:"author,omitempty" doc:"Display name, defaults to Anonymous"`
	}
}

// DeleteCommentInput identifies the comment to remove.
type DeleteCommentInput struct {
	ID        int64 `path:"id" minimum:"1" doc:"Post ID"`
	CommentID int64 `path:"commentId" minimum:"1" doc:"Comment ID"`
}

// BoolOutput is a bare success flag.
type BoolOutput struct {
	Body bool
}

// ToggleReactionInput contains the reaction to toggle.
type ToggleReactionInput struct {
	CommentID int64 `path:"commentId" minimum:"1" doc:"Comment ID"`
	Body      struct {
		Emoji    string `json:"emoji" doc:"Emoji to toggle"`
		ClientID string `json:"clientId" doc:"Stable id of the reacting client"`
	}
}

// ToggleReactionOutput reports the comment's reactions after the toggle.
type ToggleReactionOutput struct {
	Body service.ReactionResult
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*BoolOutput, error) {
	_, err := s.knowledge.AddComment(ctx, input.ID, service.CommentInput{
		Text:   input.Body.Text,
		Author: input.Body.Author,
	})
	return &BoolOutput{Body: err == nil}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *DeleteCommentInput) (*BoolOutput, error) {
	err := s.knowledge.DeleteComment(ctx, input.CommentID, input.ID)
	return &BoolOutput{Body: err == nil}, nil
}

func (s *Server) handleToggleReaction(ctx context.Context, input *ToggleReactionInput) (*ToggleReactionOutput, error) {
	reactions, err := s.knowledge.ToggleCommentReaction(ctx, input.CommentID, service.ReactionInput{
		Emoji:    input.Body.Emoji,
		ClientID: input.Body.ClientID,
	})
	if err != nil {
		return &ToggleReactionOutput{Body: service.ReactionResult{Error: clientMessage(err)}}, nil
	}
	return &ToggleReactionOutput{Body: service.ReactionResult{Success: true, Reactions: reactions}}, nil
}
