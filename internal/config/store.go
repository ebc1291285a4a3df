package config

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store publishes the active configuration. The engine and the workers read
// it per cycle, so a reload takes effect on the next input line without any
// coordination.
type Store struct {
	ptr atomic.Pointer[Config]
}

func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.ptr.Store(cfg)
	return s
}

// Current returns the active configuration. The returned value must be
// treated as read-only.
func (s *Store) Current() *Config {
	return s.ptr.Load()
}

// Replace swaps in a new configuration.
func (s *Store) Replace(cfg *Config) {
	s.ptr.Store(cfg)
}

// Watch re-reads the config file whenever it is rewritten and swaps the
// result in. A file that fails to parse is logged and skipped, keeping the
// last good configuration. Watch returns once the watcher is installed; it
// stops when ctx is cancelled.
func (s *Store) Watch(ctx context.Context, path string, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace the file on save, which drops a
	// watch installed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := read(path)
				if err != nil {
					logger.Warn("config reload failed", zap.Error(err))
					continue
				}
				s.Replace(cfg)
				logger.Info("config reloaded", zap.String("path", path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
