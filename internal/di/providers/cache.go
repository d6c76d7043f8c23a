package providers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"

	"github.com/knowledgeboard/knowledge-server/internal/cache"
	"github.com/knowledgeboard/knowledge-server/internal/config"
	"github.com/knowledgeboard/knowledge-server/internal/logger"
	"github.com/knowledgeboard/knowledge-server/internal/service"
)

// CacheHandle wraps the selected cache backend with shutdown capability.
type CacheHandle struct {
	cache.Cache
	closer io.Closer
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

// ProvideCache opens the cache backend named by the cache driver.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Cache.Driver {
	case config.CacheBadger:
		if err := os.MkdirAll(cfg.Cache.BadgerPath, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		b, err := cache.OpenBadger(cfg.Cache.BadgerPath)
		if err != nil {
			return nil, err
		}
		log.Info("Badger cache opened", "path", cfg.Cache.BadgerPath)
		return &CacheHandle{Cache: b, closer: b}, nil

	case config.CacheRedis:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		r, err := cache.NewRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPrefix)
		if err != nil {
			return nil, err
		}
		log.Info("Redis cache connected", "addr", cfg.Cache.RedisAddr)
		return &CacheHandle{Cache: r, closer: r}, nil

	default:
		var opts []cache.MemoryOption
		if cfg.Cache.MaxEntryBytes > 0 {
			opts = append(opts, cache.WithMaxEntryBytes(cfg.Cache.MaxEntryBytes))
		}
		return &CacheHandle{Cache: cache.NewMemory(opts...)}, nil
	}
}

// ProvideListCache provides the cache-aside wrapper for the assembled list.
func ProvideListCache(i do.Injector) (*service.ListCache, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	backend := do.MustInvoke[*CacheHandle](i)

	return service.NewListCache(backend.Cache, cfg.Cache.TTL, log.Component("list_cache")), nil
}
