package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher hot-reloads the project-local config file. On every change
// it re-runs the full layered Load and hands the result to the
// callback; consumers decide which fields are safe to apply live
// (model, max steps, log level).
type Watcher struct {
	path     string
	onChange func(*Config)
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	logger   *zap.Logger
}

// NewWatcher creates a watcher for the given config file path.
// Returns nil (no watcher) when path is empty — hot reload is then
// simply disabled.
func NewWatcher(path string, onChange func(*Config), logger *zap.Logger) (*Watcher, error) {
	if path == "" {
		return nil, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors replace files on save, which drops
	// a direct file watch.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:     path,
		onChange: onChange,
		watcher:  fsw,
		stopCh:   make(chan struct{}),
		logger:   logger.With(zap.String("component", "config-watcher")),
	}, nil
}

// Start blocks, forwarding reloads until Stop is called.
func (w *Watcher) Start() {
	w.logger.Info("Config watcher started", zap.String("path", w.path))

	// Debounce: editors fire several events per save.
	var pending *time.Timer
	reload := func() {
		cfg, err := Load()
		if err != nil {
			w.logger.Warn("Config reload failed", zap.Error(err))
			return
		}
		w.logger.Info("Config reloaded",
			zap.String("model", cfg.Agent.Model),
			zap.Int("max_steps", cfg.Agent.MaxSteps),
		)
		w.onChange(cfg)
	}

	for {
		select {
		case <-w.stopCh:
			w.logger.Info("Config watcher stopped")
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(500*time.Millisecond, reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", zap.Error(err))
		}
	}
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}
