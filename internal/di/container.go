// Package di provides dependency injection configuration for the knowledge server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/knowledgeboard/knowledge-server/internal/category"
	"github.com/knowledgeboard/knowledge-server/internal/config"
	"github.com/knowledgeboard/knowledge-server/internal/di/providers"
	"github.com/knowledgeboard/knowledge-server/internal/logger"
	"github.com/knowledgeboard/knowledge-server/internal/service"
	"github.com/knowledgeboard/knowledge-server/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideSheetStore)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideListCache)

	// Business services
	do.Provide(injector, providers.ProvideCategoryRegistry)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideKnowledgeService)

	// Workers
	do.Provide(injector, providers.ProvideCategoryWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.SheetStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*store.Store](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CacheHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*category.Registry](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.KnowledgeService](injector)

	if _, err := do.Invoke[*providers.CategoryWatcherHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
