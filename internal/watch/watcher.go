// Package watch monitors the comment dump inbox and triggers re-analysis of
// dumps as they arrive. This is the real-time half of opinion monitoring:
// crawlers (this tool's or external ones) drop JSON dumps into the inbox and
// the watcher feeds them through the pipeline.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"commentpulse/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one dump file. Errors are logged, not fatal; the watcher
// keeps running.
type Handler func(ctx context.Context, path string) error

// Stats tracks watcher activity for status reporting and tests.
type Stats struct {
	FilesSeen     int
	FilesHandled  int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// Watcher watches the inbox directory for new or rewritten comment dumps.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	inboxDir    string
	handler     Handler
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// New creates a watcher for the given inbox directory.
func New(inboxDir string, debounce time.Duration, handler Handler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     fw,
		inboxDir:    inboxDir,
		handler:     handler,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching the inbox. Non-blocking; the loop runs in a
// goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.inboxDir, 0755); err != nil {
		logging.Get(logging.CategoryWatch).Warn("failed to create inbox dir %s: %v", w.inboxDir, err)
	}

	if err := w.watcher.Add(w.inboxDir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Watch("watching inbox: %s", w.inboxDir)

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the loop to exit.
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
	_ = w.watcher.Close()
}

// GetStats returns a copy of the watcher stats.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			logging.Get(logging.CategoryWatch).Error("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if !strings.HasSuffix(strings.ToLower(event.Name), ".json") {
		return
	}

	w.mu.Lock()
	w.stats.FilesSeen++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name

	// Editors and crawlers emit bursts of writes per file; collapse them.
	if last, ok := w.debounceMap[event.Name]; ok && time.Since(last) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()

	// Let the writer finish before reading.
	time.Sleep(w.debounceDur)

	logging.Watch("ingesting dump: %s", filepath.Base(event.Name))
	if err := w.handler(ctx, event.Name); err != nil {
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		logging.Get(logging.CategoryWatch).Error("handle %s: %v", event.Name, err)
		return
	}

	w.mu.Lock()
	w.stats.FilesHandled++
	w.mu.Unlock()
}
