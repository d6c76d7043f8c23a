package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/knowledgeboard/knowledge-server/internal/category"
	"github.com/knowledgeboard/knowledge-server/internal/config"
	"github.com/knowledgeboard/knowledge-server/internal/logger"
	"github.com/knowledgeboard/knowledge-server/internal/service"
	"github.com/knowledgeboard/knowledge-server/internal/store"
	"github.com/knowledgeboard/knowledge-server/internal/validation"
)

// ProvideCategoryRegistry provides the category registry, seeded from the
// override file when one is configured.
func ProvideCategoryRegistry(i do.Injector) (*category.Registry, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Categories.Path == "" {
		return category.NewRegistry(nil)
	}

	configs, err := category.LoadFile(cfg.Categories.Path)
	if err != nil {
		return nil, err
	}
	registry, err := category.NewRegistry(configs)
	if err != nil {
		return nil, err
	}

	log.Info("Categories loaded", "path", cfg.Categories.Path, "count", len(configs))
	return registry, nil
}

// CategoryWatcherHandle wraps the category file watcher with shutdown capability.
// Watcher is nil when no override file is configured or watching is disabled.
type CategoryWatcherHandle struct {
	Watcher *category.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CategoryWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Close()
}

// ProvideCategoryWatcher starts reloading categories when their file changes.
func ProvideCategoryWatcher(i do.Injector) (*CategoryWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	registry := do.MustInvoke[*category.Registry](i)

	if cfg.Categories.Path == "" || !cfg.Categories.Watch {
		return &CategoryWatcherHandle{}, nil
	}

	w, err := category.NewWatcher(cfg.Categories.Path, registry, log.Component("categories"), 0)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	log.Info("Watching category file", "path", cfg.Categories.Path)

	return &CategoryWatcherHandle{Watcher: w, cancel: cancel}, nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideKnowledgeService provides the knowledge board service.
func ProvideKnowledgeService(i do.Injector) (*service.KnowledgeService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)
	listCache := do.MustInvoke[*service.ListCache](i)
	registry := do.MustInvoke[*category.Registry](i)
	validator := do.MustInvoke[*validation.Validator](i)

	return service.NewKnowledgeService(st, listCache, registry, validator, log.Component("knowledge")), nil
}
