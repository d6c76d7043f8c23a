package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/knowledgeboard/knowledge-server/internal/category"
	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/service"
)

func (s *Server) registerReferenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getReferenceData",
		Method:      http.MethodGet,
		Path:        "/api/v1/reference",
		Summary:     "Get reference data",
		Description: "Returns every tag record and the category form configuration",
		Tags:        []string{"Reference"},
	}, s.handleGetReference)
}

// ReferenceOutput contains tags and categories for the post form.
type ReferenceOutput struct {
	Body service.ReferenceData
}

func (s *Server) handleGetReference(ctx context.Context, _ *struct{}) (*ReferenceOutput, error) {
	ref, err := s.knowledge.ReferenceData(ctx)
	if err != nil {
		s.logger.Error("reference data failed", "error", err)
		return &ReferenceOutput{Body: service.ReferenceData{
			Tags:       []domain.Tag{},
			Categories: []category.Config{},
		}}, nil
	}
	return &ReferenceOutput{Body: *ref}, nil
}
