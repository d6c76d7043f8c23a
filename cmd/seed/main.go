// Package main seeds the knowledge board with demo posts, comments and likes.
//
// It goes through the same service layer as the HTTP API, so tags are
// resolved and the list cache is invalidated exactly as in production.
// Seeding is skipped when the board already has posts.
//
// Usage:
//
//	go run ./cmd/seed -store sqlite -data-path ./data
//	STORE_DRIVER=gsheets SPREADSHEET_ID=... go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/knowledgeboard/knowledge-server/internal/di"
	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/logger"
	"github.com/knowledgeboard/knowledge-server/internal/service"
)

type demoPost struct {
	input    service.PostInput
	comments []service.CommentInput
	likes    int
}

var demoPosts = []demoPost{
	{
		input: service.PostInput{
			Title:    "Effective Go",
			URL:      "https://go.dev/doc/effective_go",
			Comment:  "Still the best single read for writing Go that looks like Go.",
			Tags:     []string{"go", "style"},
			PostedBy: "Alex Rivera",
			Category: "article",
			Metadata: domain.Metadata{"summary": "Idioms for formatting, naming and concurrency.", "sourceType": "document"},
		},
		comments: []service.CommentInput{
			{Text: "The section on embedding is worth a reread.", Author: "Jordan Chen"},
		},
		likes: 3,
	},
	{
		input: service.PostInput{
			Title:         "How do we version the list cache key?",
			Comment:       "<p>When the list shape changes we serve <strong>stale JSON</strong> until the TTL expires.</p>",
			ContentFormat: "html",
			Tags:          []string{"cache", "question"},
			PostedBy:      "Sam Taylor",
			Category:      "question",
		},
		comments: []service.CommentInput{
			{Text: "Bump the key on deploy?", Author: "Casey Morgan"},
			{Text: "Or invalidate on startup.", Author: "Riley Kim"},
		},
		likes: 1,
	},
	{
		input: service.PostInput{
			Title:    "Internal demo: board search",
			Comment:  "Search across titles, bodies and links with tag filters.",
			Tags:     []string{"demo", "search"},
			PostedBy: "Jordan Chen",
			Category: "showcase",
			Metadata: domain.Metadata{"demoUrl": "https://board.example.com"},
		},
	},
}

func main() {
	injector := di.NewContainer()

	knowledge, err := do.Invoke[*service.KnowledgeService](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize services: %v\n", err)
		os.Exit(1)
	}
	log := do.MustInvoke[*logger.Logger](injector)

	err = seed(context.Background(), knowledge, log)
	if shutdownErr := injector.Shutdown(); shutdownErr != nil {
		log.Error("Shutdown error", "error", shutdownErr)
	}
	if err != nil {
		log.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, knowledge *service.KnowledgeService, log *logger.Logger) error {
	existing, err := knowledge.List(ctx, service.Filters{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("Board already has posts, nothing to seed", "count", len(existing))
		return nil
	}

	for _, demo := range demoPosts {
		id, err := knowledge.Add(ctx, demo.input)
		if err != nil {
			return fmt.Errorf("add %q: %w", demo.input.Title, err)
		}

		for _, c := range demo.comments {
			if _, err := knowledge.AddComment(ctx, id, c); err != nil {
				return fmt.Errorf("comment on %d: %w", id, err)
			}
		}

		for n := range demo.likes {
			if _, err := knowledge.AddLike(ctx, id, fmt.Sprintf("seed-client-%d", n)); err != nil {
				return fmt.Errorf("like %d: %w", id, err)
			}
		}

		log.Info("Seeded post", "id", id, "title", demo.input.Title,
			"comments", len(demo.comments), "likes", demo.likes)
	}

	log.Info("Seeding complete", "posts", len(demoPosts))
	return nil
}
