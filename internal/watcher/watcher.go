// Package watcher implements C7: a polling file watcher. Spec §4.5
// mandates polling semantics (~200ms interval) rather than native
// inotify-style events, to stay portable and avoid platform-specific
// complexity — a deliberate divergence from the teacher's fsnotify-based
// MangleWatcher (internal/core/mangle_watcher.go), whose Start/Stop/run
// goroutine-lifecycle shape is kept, but whose event source is replaced
// with a directory walk and mtime comparison.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"aether/internal/debounce"
	"aether/internal/logging"
)

// DefaultInterval is the poll period named in spec §4.5.
const DefaultInterval = 200 * time.Millisecond

// ignoredComponents are directory names never descended into or reported.
var ignoredComponents = map[string]bool{
	".git":    true,
	".aether": true,
	"target":  true,
}

// Watcher polls workspaceRoot on an interval and marks every changed file
// path into a debounce queue.
type Watcher struct {
	root     string
	interval time.Duration
	queue    *debounce.Queue

	mu      sync.Mutex
	known   map[string]time.Time // path -> last observed mtime
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New returns a Watcher rooted at root, feeding due paths into queue.
// interval <= 0 selects DefaultInterval.
func New(root string, queue *debounce.Queue, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		root:     root,
		interval: interval,
		queue:    queue,
		known:    make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins polling in a background goroutine. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.pollOnce() // establish a baseline; this first poll marks every existing file as changed
	go w.run(ctx)
}

// Stop halts polling and waits for the background goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watcher("stopped: context cancelled")
			return
		case <-w.stopCh:
			logging.Watcher("stopped: stop signal")
			return
		case <-ticker.C:
			w.pollOnce()
		}
	}
}

// pollOnce walks the tree, marks every created/modified/deleted file path
// into the debounce queue, and updates the known-mtime map. Directory
// events are never reported — only plain files.
func (w *Watcher) pollOnce() {
	now := time.Now()
	seen := make(map[string]bool)

	err := filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // a vanished file mid-walk is not fatal; the deletion is caught below
		}
		if info.IsDir() {
			if ignoredComponents[info.Name()] && path != w.root {
				return filepath.SkipDir
			}
			return nil
		}
		if IsIgnored(path) {
			return nil
		}

		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			rel = path
		}
		seen[rel] = true

		mtime := info.ModTime()
		w.mu.Lock()
		prior, existed := w.known[rel]
		w.known[rel] = mtime
		w.mu.Unlock()

		if !existed || !prior.Equal(mtime) {
			w.queue.Mark(rel, now)
		}
		return nil
	})
	if err != nil {
		logging.Get(logging.CategoryWatcher).Warn("walk error under %s: %v", w.root, err)
	}

	w.mu.Lock()
	var removed []string
	for rel := range w.known {
		if !seen[rel] {
			removed = append(removed, rel)
		}
	}
	for _, rel := range removed {
		delete(w.known, rel)
	}
	w.mu.Unlock()

	for _, rel := range removed {
		w.queue.Mark(rel, now)
	}
}

// IsIgnored reports whether any path component is .git, .aether, or
// target (spec §4.4 step 1 / §4.5).
func IsIgnored(path string) bool {
	for _, component := range strings.Split(filepath.ToSlash(path), "/") {
		if ignoredComponents[component] {
			return true
		}
	}
	return false
}
