package api

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/service"
)

func (s *Server) registerKnowledgeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listKnowledge",
		Method:      http.MethodGet,
		Path:        "/api/v1/knowledge",
		Summary:     "List knowledge",
		Description: "Returns every post, optionally narrowed by a search word and tag names. Returns an empty list when the store cannot be read.",
		Tags:        []string{"Knowledge"},
	}, s.handleListKnowledge)

	huma.Register(s.api, huma.Operation{
		OperationID: "getKnowledge",
		Method:      http.MethodGet,
		Path:        "/api/v1/knowledge/{id}",
		Summary:     "Get knowledge",
		Description: "Returns one post from the same view as the list, or null when it does not exist",
		Tags:        []string{"Knowledge"},
	}, s.handleGetKnowledge)

	huma.Register(s.api, huma.Operation{
		OperationID: "addKnowledge",
		Method:      http.MethodPost,
		Path:        "/api/v1/knowledge",
		Summary:     "Add knowledge",
		Description: "Creates a post. Tags may be an array or a comma-separated string.",
		Tags:        []string{"Knowledge"},
	}, s.handleAddKnowledge)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateKnowledge",
		Method:      http.MethodPut,
		Path:        "/api/v1/knowledge/{id}",
		Summary:     "Update knowledge",
		Description: "Overwrites a post and replaces its tags. postedAt and likes are kept.",
		Tags:        []string{"Knowledge"},
	}, s.handleUpdateKnowledge)
}

// TagsField accepts tags as a JSON array or a comma-separated string.
type TagsField []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagsField) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*t = service.SplitTags(joined)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = list
	return nil
}

// Schema implements huma.SchemaProvider.
func (TagsField) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Description: "Tag names as an array or a comma-separated string",
		OneOf: []*huma.Schema{
			{Type: huma.TypeString},
			{Type: huma.TypeArray, Items: &huma.Schema{Type: huma.TypeString}},
		},
	}
}

// KnowledgeDetail serializes a knowledge record, or null when there is none.
type KnowledgeDetail struct {
	knowledge *domain.Knowledge
}

// MarshalJSON implements json.Marshaler.
func (d KnowledgeDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.knowledge)
}

// Schema implements huma.SchemaProvider.
func (KnowledgeDetail) Schema(r huma.Registry) *huma.Schema {
	return r.Schema(reflect.TypeOf(domain.Knowledge{}), true, "Knowledge")
}

// PostRequest is the body of add and update.
type PostRequest struct {
	Title         string         `json:"title" maxLength:"200" doc:"Post title"`
	URL           string         `json:"url,omitempty" doc:"Primary link"`
	Comment       string         `json:"comment,omitempty" doc:"Post body, markdown unless contentFormat is html"`
	ContentFormat string         `json:"contentFormat,omitempty" doc:"markdown (default) or html"`
	Tags          TagsField      `json:"tags,omitempty"`
	PostedBy      string         `json:"postedBy,omitempty" doc:"Author display name"`
	ThumbnailURL  string         `json:"thumbnailUrl,omitempty"`
	Category      string         `json:"category,omitempty" doc:"Category key, defaults to article"`
	Status        string         `json:"status,omitempty" doc:"Defaults to the category's default status"`
	Metadata      map[string]any `json:"metadata,omitempty" doc:"Category-specific fields"`
}

func (r PostRequest) toInput() service.PostInput {
	return service.PostInput{
		Title:         r.Title,
		URL:           r.URL,
		Comment:       r.Comment,
		ContentFormat: r.ContentFormat,
		Tags:          r.Tags,
		PostedBy:      r.PostedBy,
		ThumbnailURL:  r.ThumbnailURL,
		Category:      r.Category,
		Status:        r.Status,
		Metadata:      r.Metadata,
	}
}

// ListKnowledgeInput contains parameters for listing knowledge.
type ListKnowledgeInput struct {
	Search string   `query:"search" doc:"Case-insensitive match on title, body or URL"`
	Tags   []string `query:"tags,explode" doc:"Keep posts carrying any of these tag names"`
}

// ListKnowledgeOutput contains the filtered knowledge list.
type ListKnowledgeOutput struct {
	Body []domain.Knowledge
}

// GetKnowledgeInput contains parameters for getting one post.
type GetKnowledgeInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Post ID"`
}

// GetKnowledgeOutput contains the post or null.
type GetKnowledgeOutput struct {
	Body KnowledgeDetail
}

// AddKnowledgeInput contains the new post.
type AddKnowledgeInput struct {
	Body PostRequest
}

// UpdateKnowledgeInput contains the post id and its new content.
type UpdateKnowledgeInput struct {
	ID   int64 `path:"id" minimum:"1" doc:"Post ID"`
	Body PostRequest
}

// MutationOutput reports the outcome of add and update.
type MutationOutput struct {
	Body service.MutationResult
}

func (s *Server) handleListKnowledge(ctx context.Context, input *ListKnowledgeInput) (*ListKnowledgeOutput, error) {
	list, err := s.knowledge.List(ctx, service.Filters{SearchWord: input.Search, TagNames: input.Tags})
	if err != nil {
		s.logger.Error("list knowledge failed", "error", err)
		list = []domain.Knowledge{}
	}
	return &ListKnowledgeOutput{Body: list}, nil
}

func (s *Server) handleGetKnowledge(ctx context.Context, input *GetKnowledgeInput) (*GetKnowledgeOutput, error) {
	k, err := s.knowledge.Get(ctx, input.ID)
	if err != nil {
		s.logger.Debug("knowledge detail unavailable", "post_id", input.ID, "error", err)
		return &GetKnowledgeOutput{}, nil
	}
	return &GetKnowledgeOutput{Body: KnowledgeDetail{knowledge: k}}, nil
}

func (s *Server) handleAddKnowledge(ctx context.Context, input *AddKnowledgeInput) (*MutationOutput, error) {
	id, err := s.knowledge.Add(ctx, input.Body.toInput())
	if err != nil {
		return &MutationOutput{Body: service.MutationResult{Error: clientMessage(err)}}, nil
	}
	return &MutationOutput{Body: service.MutationResult{Success: true, ID: id}}, nil
}

func (s *Server) handleUpdateKnowledge(ctx context.Context, input *UpdateKnowledgeInput) (*MutationOutput, error) {
	id, err := s.knowledge.Update(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return &MutationOutput{Body: service.MutationResult{Error: clientMessage(err)}}, nil
	}
	return &MutationOutput{Body: service.MutationResult{Success: true, ID: id}}, nil
}
