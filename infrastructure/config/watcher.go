package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches the tunables file for changes and hands validated
// snapshots to subscribers. A bad edit keeps the last good snapshot.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *Tunables
	mu       sync.RWMutex
	onChange []func(*Tunables)
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher loads the tunables file and starts watching its directory.
// Watching the directory instead of the file survives the rename dance
// most editors and configmap mounts do on save.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	tunables, err := LoadTunables(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial tunables: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch tunables directory: %w", err)
	}

	w := &Watcher{
		path:    path,
		watcher: fsw,
		current: tunables,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	go w.loop()

	logger.Info("tunables watcher started", zap.String("path", path))
	return w, nil
}

// Current returns the latest valid tunables snapshot
func (w *Watcher) Current() *Tunables {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked with each new valid snapshot
func (w *Watcher) OnChange(fn func(*Tunables)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Stop shuts the watcher down
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
}

func (w *Watcher) loop() {
	// Editors fire several events per save; debounce them.
	var timer *time.Timer
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("tunables watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	tunables, err := LoadTunables(w.path)
	if err != nil {
		w.logger.Error("tunables reload failed, keeping previous snapshot",
			zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = tunables
	callbacks := make([]func(*Tunables), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()

	w.logger.Info("tunables reloaded",
		zap.String("version", tunables.Metadata.Version),
		zap.Duration("cacheTtl", tunables.Cache.TTL))
	for _, fn := range callbacks {
		fn(tunables)
	}
}
