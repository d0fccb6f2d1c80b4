// pkg/config/watcher.go
package config

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ErrNoConfigFile is returned by NewWatcher when the manager was loaded
// without a config file.
var ErrNoConfigFile = errors.New("config: no config file to watch")

// DefaultDebounce is the delay between the last file change and the reload.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads the configuration file when it changes and passes the
// new configuration to a callback. Rapid successive writes are coalesced.
type Watcher struct {
	manager  *Manager
	path     string
	onChange func(Config)

	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for the file m was loaded from.
func NewWatcher(m *Manager, logger zerolog.Logger, onChange func(Config)) (*Watcher, error) {
	path := m.Path()
	if path == "" {
		return nil, ErrNoConfigFile
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		manager:  m,
		path:     path,
		onChange: onChange,
		watcher:  fw,
		debounce: DefaultDebounce,
		logger:   logger.With().Str("component", "config.watcher").Logger(),
	}, nil
}

// SetDebounce changes the debounce delay. It must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Start watches the config file until ctx is cancelled. It blocks; run it
// in its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	// editors replace files, so watch the directory
	dir := filepath.Dir(w.path)
	name := filepath.Base(w.path)

	if err := w.watcher.Add(dir); err != nil {
		w.logger.Error().Err(err).Str("dir", dir).Msg("Failed to watch config directory")
		return err
	}

	w.logger.Debug().Str("file", w.path).Dur("debounce", w.debounce).Msg("Watching config file")

	defer func() {
		w.stopTimer()
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Error closing watcher")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.logger.Debug().Str("op", ev.Op.String()).Msg("Config file changed")
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reload() {
	cfg, err := w.manager.Reload()
	if err != nil {
		// keep serving the previous configuration
		w.logger.Error().Err(err).Str("file", w.path).Msg("Failed to reload config")
		return
	}
	w.logger.Info().Str("file", w.path).Msg("Config reloaded")
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops the underlying file watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
