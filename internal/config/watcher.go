package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file for changes and reloads it. Only
// configurations that pass validation are handed to the reload callback;
// invalid edits are reported through the error callback and the previous
// config stays in effect.
type Watcher struct {
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	configPath string

	mu       sync.Mutex
	current  *Config
	onReload func(*Config)
	onError  func(error)
	running  bool

	doneCh chan struct{}
}

// NewWatcher creates a Watcher for the given config path. An empty path
// uses the default location.
func NewWatcher(path string, initial *Config, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		path = Path()
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:    fw,
		logger:     logger,
		configPath: path,
		current:    initial,
		doneCh:     make(chan struct{}),
	}, nil
}

// SetReloadCallback sets the callback invoked with each valid new config.
func (w *Watcher) SetReloadCallback(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// SetErrorCallback sets the callback invoked when a changed config fails
// to load or validate.
func (w *Watcher) SetErrorCallback(callback func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Current returns the most recently loaded valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start begins watching. Watching the parent directory rather than the
// file itself survives editors that replace the file on save.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go w.watch()

	w.logger.Debug("config watcher started", "path", w.configPath)
	return nil
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	_ = w.watcher.Close()
	<-w.doneCh
	w.logger.Debug("config watcher stopped")
}

// watch is the main watch loop.
func (w *Watcher) watch() {
	defer close(w.doneCh)

	filename := filepath.Base(w.configPath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// reload loads and validates the changed file, keeping the old config on
// failure.
func (w *Watcher) reload() {
	cfg, err := Load(w.configPath)
	if err != nil {
		w.logger.Warn("config file changed but reload failed", "error", err)
		w.mu.Lock()
		onError := w.onError
		w.mu.Unlock()
		if onError != nil {
			onError(err)
		}
		return
	}

	w.mu.Lock()
	w.current = cfg
	onReload := w.onReload
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.configPath)
	if onReload != nil {
		onReload(cfg)
	}
}
