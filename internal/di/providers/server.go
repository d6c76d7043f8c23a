package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/knowledgeboard/knowledge-server/internal/api"
	"github.com/knowledgeboard/knowledge-server/internal/config"
	"github.com/knowledgeboard/knowledge-server/internal/logger"
	"github.com/knowledgeboard/knowledge-server/internal/service"
	"github.com/knowledgeboard/knowledge-server/internal/store"
)

// healthCheckKey is read from the cache to check the backend answers.
const healthCheckKey = "health_check"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	knowledge := do.MustInvoke[*service.KnowledgeService](i)

	checks := []api.HealthCheck{
		{Name: "store", Check: st.Ping},
		{Name: "cache", Check: func(ctx context.Context) error {
			_, _, err := cacheHandle.Get(ctx, healthCheckKey)
			return err
		}},
	}

	handler := api.NewServer(knowledge, checks, api.Options{
		CORSOrigins:     cfg.Server.CORSOrigins,
		WritesPerMinute: cfg.Server.WritesPerMinute,
		TrustProxy:      cfg.Server.TrustProxy,
	}, log.Component("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
