// Package api provides the HTTP API server and handlers for the knowledge board.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/knowledgeboard/knowledge-server/internal/http/response"
	"github.com/knowledgeboard/knowledge-server/internal/ratelimit"
	"github.com/knowledgeboard/knowledge-server/internal/service"
)

// Options configures the HTTP surface.
type Options struct {
	Title           string
	Version         string
	CORSOrigins     []string
	WritesPerMinute int
	// TrustProxy lets X-Forwarded-For and X-Real-IP replace the peer
	// address. Enable only behind a proxy that overwrites those headers.
	TrustProxy bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	knowledge    *service.KnowledgeService
	checks       []HealthCheck
	router       *chi.Mux
	api          huma.API
	logger       *slog.Logger
	writeLimiter *ratelimit.KeyedRateLimiter
	retryAfter   time.Duration
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(knowledge *service.KnowledgeService, checks []HealthCheck, opts Options, logger *slog.Logger) *Server {
	if opts.Title == "" {
		opts.Title = "Knowledge Board API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.WritesPerMinute <= 0 {
		opts.WritesPerMinute = 60
	}

	router := chi.NewRouter()
	s := &Server{
		knowledge:    knowledge,
		checks:       checks,
		router:       router,
		logger:       logger,
		writeLimiter: NewRateLimiter(opts.WritesPerMinute, time.Minute, opts.WritesPerMinute),
		retryAfter:   time.Minute / time.Duration(opts.WritesPerMinute),
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig(opts.Title, opts.Version)
	humaConfig.Info.Description = "Team knowledge board: posts, tags, comments, likes and reactions."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI export and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.writeLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	if opts.TrustProxy {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(opts.CORSOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Retry-After", "X-Request-ID"},
		MaxAge:         300,
	}))
	s.router.Use(WriteRateLimitMiddleware(s.writeLimiter, s.retryAfter, s.logger))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

// setupRoutes registers every huma operation.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerKnowledgeRoutes()
	s.registerCommentRoutes()
	s.registerLikeRoutes()
	s.registerReferenceRoutes()
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
