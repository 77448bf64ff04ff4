// Package watcher reports batches of changed Java sources below a
// repository root so documentation can be regenerated.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jdmd.watcher")

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// SkipFunc reports whether a repo-relative path should not be watched.
type SkipFunc func(relPath string, isDir bool) bool

// Watcher watches a directory tree for .java changes and fires a callback
// once events have been quiet for the debounce period.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	skip     SkipFunc
	debounce time.Duration
	callback func(files []string)
	ctx      context.Context
	cancel   context.CancelFunc

	accumulated   map[string]bool // repo-relative paths changed since the last callback
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex
	stopOnce      sync.Once
	doneCh        chan struct{}
}

// New creates a watcher on root and every directory below it that skip
// does not exclude. A non-positive debounce uses DefaultDebounce.
func New(root string, debounce time.Duration, skip SkipFunc) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if skip == nil {
		skip = func(string, bool) bool { return false }
	}

	w := &Watcher{
		watcher:     fsw,
		root:        absRoot,
		skip:        skip,
		debounce:    debounce,
		accumulated: make(map[string]bool),
		doneCh:      make(chan struct{}),
	}
	if err := w.addDirectoriesRecursively(absRoot); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching. callback receives sorted repo-relative paths and
// runs on the watch goroutine, so events arriving during a long callback
// are batched into the next one.
func (w *Watcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return errors.New("watcher: nil callback")
	}
	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.watch()
	log.Infof("watching %s for .java changes", w.root)
	return nil
}

// Stop ends watching and waits for the watch goroutine. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

// Done is closed when the watch goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) watch() {
	defer close(w.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-w.ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						log.Warningf("failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			rel, ok := w.relevant(event)
			if !ok {
				continue
			}
			log.Debugf("%s: %s", event.Op, rel)

			w.accumulatedMu.Lock()
			w.accumulated[rel] = true
			w.accumulatedMu.Unlock()

			w.resetDebounceTimer(fireCh)

		case <-fireCh:
			w.flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("file watcher error: %v", err)
		}
	}
}

// flush hands the accumulated paths to the callback.
func (w *Watcher) flush() {
	w.accumulatedMu.Lock()
	if len(w.accumulated) == 0 {
		w.accumulatedMu.Unlock()
		return
	}
	files := make([]string, 0, len(w.accumulated))
	for f := range w.accumulated {
		files = append(files, f)
	}
	w.accumulated = make(map[string]bool)
	w.accumulatedMu.Unlock()

	sort.Strings(files)
	w.callback(files)
}

func (w *Watcher) resetDebounceTimer(fireCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

// relevant returns the repo-relative path of a write, create, remove or
// rename of a .java file that skip does not exclude.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".java") {
		return "", false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.skip(rel, false) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) addDirectoriesRecursively(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Warningf("error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if rel, err := filepath.Rel(w.root, path); err == nil && w.skip(filepath.ToSlash(rel), true) {
				return filepath.SkipDir
			}
		}
		if err := w.watcher.Add(path); err != nil {
			log.Warningf("failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
