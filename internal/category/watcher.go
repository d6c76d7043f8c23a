package category

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change
// before reloading. Editors often write a file in several steps.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Registry whenever its YAML file changes.
type Watcher struct {
	path     string
	registry *Registry
	logger   *slog.Logger
	debounce time.Duration
	fsw      *fsnotify.Watcher

	// OnReload, if set, is called after every reload attempt.
	OnReload func(err error)

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewWatcher watches path's directory. Watching the directory rather than
// the file survives editors that replace the file by renaming over it.
func NewWatcher(path string, registry *Registry, logger *slog.Logger, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		registry: registry,
		logger:   logger,
		debounce: debounce,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Reload reads the file and swaps it into the registry. On error the
// registry keeps its current set.
func (w *Watcher) Reload() error {
	configs, err := LoadFile(w.path)
	if err == nil {
		err = w.registry.Replace(configs)
	}
	if err != nil {
		w.logger.Warn("category reload failed, keeping previous set", "path", w.path, "error", err)
	} else {
		w.logger.Info("categories reloaded", "path", w.path, "count", len(configs))
	}
	if w.OnReload != nil {
		w.OnReload(err)
	}
	return err
}

// Start processes file events until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("category watcher error", "error", err)
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
		default:
			_ = w.Reload()
		}
	})
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
