package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 250 * time.Millisecond

// WatcherConfig controls a config file Watcher.
type WatcherConfig struct {
	Path     string
	Debounce time.Duration
	// MaxWait bounds how long a stream of changes can postpone a reload.
	// Defaults to four times Debounce.
	MaxWait time.Duration
	Logger  *slog.Logger
	// OnChange receives every reload attempt. A failed load leaves the
	// previous config in effect; err says why.
	OnChange func(res *LoadResult, err error)
}

// Watcher reloads the config file when it changes on disk. It watches the
// parent directory so editors that save via rename are picked up.
type Watcher struct {
	path     string
	debounce time.Duration
	maxWait  time.Duration
	logger   *slog.Logger
	onChange func(*LoadResult, error)
}

func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("OnChange callback is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultWatchDebounce
	}
	if cfg.MaxWait < cfg.Debounce {
		cfg.MaxWait = 4 * cfg.Debounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", cfg.Path, err)
	}
	return &Watcher{
		path:     abs,
		debounce: cfg.Debounce,
		maxWait:  cfg.MaxWait,
		logger:   cfg.Logger,
		onChange: cfg.OnChange,
	}, nil
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Debug("watching config", "path", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	// firstChange is when the pending reload was first requested; zero when
	// nothing is pending.
	var firstChange time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			now := time.Now()
			if firstChange.IsZero() {
				firstChange = now
			}
			timer.Reset(min(w.debounce, firstChange.Add(w.maxWait).Sub(now)))
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		case <-timer.C:
			firstChange = time.Time{}
			res, err := LoadFromPath(w.path)
			if err != nil {
				w.logger.Warn("config reload failed", "path", w.path, "error", err)
			} else {
				w.logger.Info("config reloaded", "path", w.path)
			}
			w.onChange(res, err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0
}
