package corpus

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a batch of changes is handled.
const DefaultDebounce = 500 * time.Millisecond

// ChangeHandler receives the sorted relative paths of the units that
// changed since the last call.
type ChangeHandler func(ctx context.Context, changed []string)

// Watcher watches a library tree and calls a handler when units change.
type Watcher struct {
	discovery    *Discovery
	onChange     ChangeHandler
	logger       *zap.Logger
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewWatcher creates a watcher over every non-ignored directory of the
// discovery root.
func NewWatcher(d *Discovery, debounce time.Duration, onChange ChangeHandler, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		discovery:    d,
		onChange:     onChange,
		logger:       logger,
		watcher:      fw,
		debounceTime: debounce,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(d.Root()); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching for file changes. It does nothing on a watcher that
// is already started or stopped.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.watch(ctx)
}

// Stop stops the watcher and, if it was started, waits for the event loop to
// exit. It is safe to call more than once and on a watcher never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stopCh)
	if w.started {
		<-w.doneCh
	}
	w.watcher.Close()
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	fireCh := make(chan struct{}, 1)
	changed := make(map[string]struct{})

	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
					continue
				}
			}

			rel, ok := w.relevant(event)
			if !ok {
				continue
			}
			changed[rel] = struct{}{}

			stopTimer()
			debounceTimer = time.AfterFunc(w.debounceTime, func() {
				select {
				case fireCh <- struct{}{}:
				default:
				}
			})

		case <-fireCh:
			if len(changed) == 0 {
				continue
			}
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			changed = make(map[string]struct{})

			w.logger.Info("units changed", zap.Int("count", len(paths)))
			w.onChange(ctx, paths)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// relevant returns the relative path of a write, create, remove or rename
// event on a unit.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	rel, err := filepath.Rel(w.discovery.Root(), event.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	return rel, w.discovery.Matches(rel)
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("error accessing path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(w.discovery.Root(), path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && w.discovery.shouldIgnore(rel) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}
