package daemon

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/linkcheck/internal/errors"
	"git.home.luguber.info/inful/linkcheck/internal/logfields"
)

// Watcher monitors the build root and triggers a re-check after changes
// settle for the debounce window.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	onChange func()
	debounce time.Duration
	mu       sync.Mutex
	stopChan chan struct{}
}

// NewWatcher creates a build-root watcher. onChange is invoked after
// events stop arriving for the debounce window.
func NewWatcher(root string, debounce time.Duration, onChange func()) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create file watcher")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		_ = watcher.Close()
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve watch root").WithContext("root", root)
	}

	return &Watcher{
		root:     absRoot,
		watcher:  watcher,
		onChange: onChange,
		debounce: debounce,
		stopChan: make(chan struct{}),
	}, nil
}

// Start registers every directory under the root and begins the watch
// loop. fsnotify watches are not recursive, so directories created later
// are added as their create events arrive.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch build root").WithContext("root", w.root)
	}

	slog.Info("Watching build root for changes",
		logfields.Root(w.root),
		logfields.DurationMS(float64(w.debounce.Milliseconds())))

	go w.watchLoop(ctx)
	return nil
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	close(w.stopChan)
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-fire:
			slog.Debug("Filesystem quiet, triggering re-check", logfields.Root(w.root))
			w.onChange()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories need their own watch.
				_ = w.addIfDir(event.Name)
			}
			schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) addIfDir(p string) error {
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return nil
	}
	return w.watcher.Add(p)
}
