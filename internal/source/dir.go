package source

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rowantrollope/redis-fs-events/internal/filter"
	"github.com/rowantrollope/redis-fs-events/internal/fs"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

// DirOptions configures a DirWatcher.
type DirOptions struct {
	// Context is copied into every notification; only Message, SessionID and User are used.
	Context watch.Context
	// Window is the quiet period that ends a poll cycle.
	Window time.Duration
	// MaxWait bounds how long a busy cycle may stay open.
	MaxWait time.Duration
	// Ignore skips matching directories when adding watches. Notifications are not
	// filtered here; pass the matcher's Filter to the executor for that.
	Ignore *filter.Matcher
	Logger *slog.Logger
}

// DirWatcher watches a directory tree with fsnotify and emits one watch key per poll cycle.
// Paths in notifications are logical: relative to the root and rooted at "/".
type DirWatcher struct {
	root     string
	opts     DirOptions
	fsw      *fsnotify.Watcher
	batcher  *Batcher
	logger   *slog.Logger
	done     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	watching map[string]bool
	stopOnce sync.Once
}

// NewDirWatcher starts watching root recursively.
func NewDirWatcher(root string, opts DirOptions) (*DirWatcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w := &DirWatcher{
		root:     abs,
		opts:     opts,
		fsw:      fsw,
		batcher:  NewBatcher(opts.Window, opts.MaxWait, PairRenames),
		logger:   logger.With(slog.String("root", abs)),
		done:     make(chan struct{}),
		watching: make(map[string]bool),
	}

	if err := w.addRecursive(abs); err != nil {
		w.batcher.Close()
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Root returns the absolute path being watched.
func (w *DirWatcher) Root() string {
	return w.root
}

// Keys returns the channel of poll-cycle keys. It is closed after Close.
func (w *DirWatcher) Keys() <-chan watch.Key {
	return w.batcher.Keys()
}

// Close stops watching. It is safe to call more than once.
func (w *DirWatcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.batcher.Close()
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *DirWatcher) run() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.batcher.Add(watch.Notification{Kind: watch.KindOverflow, Context: w.context("", "")})
			}
			w.logger.Warn("watcher error", slog.Any("error", err))
		case <-w.done:
			return
		}
	}
}

func (w *DirWatcher) handle(event fsnotify.Event) {
	n, ok := w.translate(event)
	if !ok {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("cannot watch new directory", slog.String("path", event.Name), slog.Any("error", err))
			}
		}
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.forget(event.Name)
	}
	w.batcher.Add(n)
}

// translate maps an fsnotify event to a raw notification. Renames carry only the old
// path; PairRenames completes them once the cycle is known.
func (w *DirWatcher) translate(event fsnotify.Event) (watch.Notification, bool) {
	logical, err := fs.Logical(w.root, event.Name)
	if err != nil {
		w.logger.Debug("event outside root", slog.String("path", event.Name))
		return watch.Notification{}, false
	}

	switch {
	case event.Has(fsnotify.Create):
		return watch.Notification{Kind: watch.KindCreate, Context: w.context("", logical)}, true
	case event.Has(fsnotify.Remove):
		return watch.Notification{Kind: watch.KindDelete, Context: w.context(logical, "")}, true
	case event.Has(fsnotify.Rename):
		return watch.Notification{Kind: watch.KindRename, Context: w.context(logical, "")}, true
	case event.Has(fsnotify.Write):
		return watch.Notification{Kind: watch.KindModify, Context: w.context(logical, "")}, true
	default:
		return watch.Notification{Kind: watch.KindOverflow, Context: w.context(logical, logical)}, true
	}
}

func (w *DirWatcher) context(oldPath, path string) watch.Context {
	return watch.Context{
		OldPath:   oldPath,
		Path:      path,
		Message:   w.opts.Context.Message,
		SessionID: w.opts.Context.SessionID,
		User:      w.opts.Context.User,
	}
}

func (w *DirWatcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.opts.Ignore != nil {
			if logical, lerr := fs.Logical(w.root, path); lerr == nil && w.opts.Ignore.MatchDir(logical) {
				return filepath.SkipDir
			}
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.watching[path] {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			if path == dir {
				return err
			}
			w.logger.Warn("cannot watch directory", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		w.watching[path] = true
		return nil
	})
}

func (w *DirWatcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefix := path + string(filepath.Separator)
	for dir := range w.watching {
		if dir == path || (len(dir) > len(prefix) && dir[:len(prefix)] == prefix) {
			delete(w.watching, dir)
		}
	}
}

// Watched returns the number of directories currently registered with fsnotify.
func (w *DirWatcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watching)
}

// PairRenames completes rename notifications that only carry their old path. A rename
// immediately followed by a create becomes one rename to the created path; a rename
// with no such partner means the resource left the tree and becomes a delete.
func PairRenames(batch watch.Batch) watch.Batch {
	out := make(watch.Batch, 0, len(batch))
	for i := 0; i < len(batch); i++ {
		n := batch[i]
		if n.Kind != watch.KindRename || n.Context.Path != "" {
			out = append(out, n)
			continue
		}
		if i+1 < len(batch) && batch[i+1].Kind == watch.KindCreate {
			n.Context.Path = batch[i+1].Context.Path
			out = append(out, n)
			i++
			continue
		}
		n.Kind = watch.KindDelete
		out = append(out, n)
	}
	return out
}
