package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"aether/internal/logging"
)

// Watcher hot-reloads .aether/config.toml whenever it changes on disk
// and serves the latest parsed config through Current(). Components that
// were built from an earlier config keep using that config. Grounded on the same fsnotify + debounce-map shape
// used elsewhere in the pack for watching a single well-known file.
type Watcher struct {
	mu            sync.RWMutex
	watcher       *fsnotify.Watcher
	workspaceRoot string
	current       *Config
	debounceDur   time.Duration
	lastEvent     time.Time
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewWatcher loads the initial config and starts watching its containing
// directory (fsnotify cannot watch files that don't exist yet; watching
// the directory also survives editors that replace-write the file).
func NewWatcher(workspaceRoot string) (*Watcher, error) {
	cfg, err := Load(workspaceRoot)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(Path(workspaceRoot))
	if err := os.MkdirAll(dir, 0755); err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:       fw,
		workspaceRoot: workspaceRoot,
		current:       cfg,
		debounceDur:   300 * time.Millisecond,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	target := Path(w.workspaceRoot)
	debounce := time.NewTicker(50 * time.Millisecond)
	defer debounce.Stop()

	pending := false
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.mu.Lock()
			w.lastEvent = time.Now()
			w.mu.Unlock()
			pending = true
		case <-debounce.C:
			if !pending {
				continue
			}
			w.mu.RLock()
			due := time.Since(w.lastEvent) >= w.debounceDur
			w.mu.RUnlock()
			if !due {
				continue
			}
			pending = false
			cfg, err := Load(w.workspaceRoot)
			if err != nil {
				logging.Get(logging.CategoryBoot).Warn("config reload failed: %v", err)
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			logging.Get(logging.CategoryBoot).Info("config reloaded from %s", target)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryBoot).Warn("config watcher error: %v", err)
		}
	}
}

// Close stops the watcher goroutine and releases the fsnotify handle.
func (w *Watcher) Close() error {
	close(w.stopCh)
	<-w.doneCh
	return w.watcher.Close()
}
