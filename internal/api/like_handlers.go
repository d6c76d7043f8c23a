package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerLikeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/knowledge/{id}/likes",
		Summary:     "Like a post",
		Description: "Records one like per client and returns the new total. A repeated like returns the unchanged total; 0 means the like could not be recorded.",
		Tags:        []string{"Likes"},
	}, s.handleAddLike)
}

// AddLikeBody names the liking client.
type AddLikeBody struct {
	ClientID string `json:"clientId,omitempty" doc:"Stable client id; anonymous likes are never deduplicated"`
}

// AddLikeInput identifies the post and the liking client. The body is
// optional; without one the like is anonymous.
type AddLikeInput struct {
	ID   int64        `path:"id" minimum:"1" doc:"Post ID"`
	Body *AddLikeBody `required:"false"`
}

// AddLikeOutput is the post's like total.
type AddLikeOutput struct {
	Body int
}

func (s *Server) handleAddLike(ctx context.Context, input *AddLikeInput) (*AddLikeOutput, error) {
	var clientID string
	if input.Body != nil {
		clientID = input.Body.ClientID
	}
	count, err := s.knowledge.AddLike(ctx, input.ID, clientID)
	if err != nil {
		return &AddLikeOutput{Body: 0}, nil
	}
	return &AddLikeOutput{Body: count}, nil
}
