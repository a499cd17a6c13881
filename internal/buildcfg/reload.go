// SPDX-License-Identifier: MIT

package buildcfg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	buildlog "github.com/ManuGH/buildcfg/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// Change is delivered to listeners after a successful reload.
type Change struct {
	Old     BuildConfiguration
	New     BuildConfiguration
	Summary ChangeSummary
}

// Holder holds configuration with atomic reloading capability.
// Readers always see a complete value; a failed reload leaves it unchanged.
type Holder struct {
	mu      sync.RWMutex
	current BuildConfiguration
	loader  *Loader
	logger  zerolog.Logger

	// reloadMu serializes Reload so the last load started is the one kept.
	reloadMu sync.Mutex
	observe  func(err error, d time.Duration)

	debounce time.Duration

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}

	// Reload notifications
	listenerMu sync.RWMutex
	listeners  []chan<- Change
}

// NewHolder creates a holder with an already loaded configuration.
func NewHolder(initial BuildConfiguration, loader *Loader) *Holder {
	return &Holder{
		current:  initial,
		loader:   loader,
		logger:   buildlog.WithComponent("buildcfg.reload"),
		debounce: DefaultDebounce,
	}
}

// SetDebounce changes the debounce window. Call before StartWatcher.
func (h *Holder) SetDebounce(d time.Duration) {
	h.debounce = d
}

// OnLoad registers fn to be called after every load attempt made by Reload,
// successful or not. Call before StartWatcher.
func (h *Holder) OnLoad(fn func(err error, d time.Duration)) {
	h.observe = fn
}

// Get returns the current configuration (thread-safe read).
func (h *Holder) Get() BuildConfiguration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload loads the file again. If loading or validation fails, the old
// configuration is kept and the error is returned. Concurrent calls run one
// at a time.
func (h *Holder) Reload(ctx context.Context) error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	h.logger.Info().Str("event", "config.reload_start").Msg("reloading build configuration")

	start := time.Now()
	next, err := h.loader.Load()
	if h.observe != nil {
		h.observe(err, time.Since(start))
	}
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("failed to load new build configuration, keeping previous")
		return fmt.Errorf("load config: %w", err)
	}

	// Atomically swap configuration
	h.mu.Lock()
	old := h.current
	h.current = next
	h.mu.Unlock()

	summary, err := Diff(old, next)
	if err != nil {
		return fmt.Errorf("diff config: %w", err)
	}

	h.notifyListeners(Change{Old: old, New: next, Summary: summary})

	h.logger.Info().
		Str("event", "config.reload_success").
		Strs("changed", summary.ChangedKeys).
		Bool("rebuild_required", summary.RebuildRequired).
		Msg("build configuration reloaded")

	return nil
}

// StartWatcher watches the loader's file until ctx is done or Stop is called.
// The parent directory is watched so atomic replaces (rename over the file)
// are seen. Without a file path this is a no-op.
func (h *Holder) StartWatcher(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("config file watcher disabled (no file)")
		return nil
	}

	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	if h.watcher != nil {
		return errors.New("watcher already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.watcher = watcher
	h.done = make(chan struct{})

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", path).
		Msg("watching build configuration for changes")

	go h.watchLoop(ctx, watcher, filepath.Clean(path), h.done)
	return nil
}

// watchLoop is the main file watcher loop. Reloads run on this goroutine,
// so they never overlap.
func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, done chan struct{}) {
	defer close(done)
	defer func() { _ = watcher.Close() }()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str("event", "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")

			// Debounce: reset timer on each event
			if timer == nil {
				timer = time.NewTimer(h.debounce)
			} else {
				if !timer.Stop() && pending {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(h.debounce)
			}
			timerC = timer.C
			pending = true

		case <-timerC:
			pending = false
			timerC = nil
			if err := h.Reload(ctx); err != nil && ctx.Err() == nil {
				h.logger.Error().
					Err(err).
					Str("event", "config.auto_reload_failed").
					Msg("automatic config reload failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop stops the watcher (if running) and waits for its goroutine to exit.
func (h *Holder) Stop() {
	h.watchMu.Lock()
	watcher, done := h.watcher, h.done
	h.watcher, h.done = nil, nil
	h.watchMu.Unlock()

	if watcher == nil {
		return
	}
	_ = watcher.Close()
	<-done
}

// Subscribe registers a channel that receives a Change after every
// successful reload. Sends never block; a full channel misses the update.
// The caller is responsible for closing the channel.
func (h *Holder) Subscribe(ch chan<- Change) {
	h.listenerMu.Lock()
	defer h.listenerMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

// notifyListeners sends the change to all registered listeners (non-blocking).
func (h *Holder) notifyListeners(c Change) {
	h.listenerMu.RLock()
	defer h.listenerMu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- c:
		default:
			h.logger.Warn().
				Str("event", "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}
