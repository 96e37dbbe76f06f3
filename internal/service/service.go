// Package service runs watch sources through the executor and tracks what it has done.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rowantrollope/redis-fs-events/internal/filter"
	"github.com/rowantrollope/redis-fs-events/internal/source"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAlreadyWatching = errors.New("already watching")
	ErrNotWatching     = errors.New("not watching")
)

// Options configures a Service.
type Options struct {
	// Context supplies the user, session and message attached to local notifications.
	Context watch.Context
	// Window and MaxWait bound the poll cycle of directory watches.
	Window  time.Duration
	MaxWait time.Duration
	// PollInterval is how often the Redis queue is drained.
	PollInterval time.Duration
	// Ignore holds the configured ignore patterns. They also prune directory walks.
	Ignore *filter.Matcher
	// Kinds, when non-empty, keeps only these notification kinds.
	Kinds []watch.Kind
	// IgnoreSessions drops notifications from these session ids.
	IgnoreSessions []string
	Repeated       watch.RepeatedChangePolicy
	Logger         *slog.Logger
}

// Watch describes one active directory watch.
type Watch struct {
	Root    string
	Dirs    int
	Started time.Time
}

type dirWatch struct {
	w       *source.DirWatcher
	started time.Time
	done    chan struct{}
}

// Service owns an executor and the sources feeding it. Each source is drained one key at a
// time; different sources run concurrently.
type Service struct {
	exec    *watch.Executor
	queue   *source.Queue
	opts    Options
	ignore  *filter.Matcher
	runtime *filter.Matcher
	logger  *slog.Logger
	stats   counters

	mu      sync.Mutex
	watches map[string]*dirWatch
}

// New creates a Service delivering events to observer. queue may be nil when no Redis
// queue is drained.
func New(observer watch.ResourceObserver, queue *source.Queue, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ignore := opts.Ignore
	if ignore == nil {
		ignore, _ = filter.NewMatcher()
	}
	runtime, _ := filter.NewMatcher()

	s := &Service{
		queue:   queue,
		opts:    opts,
		ignore:  ignore,
		runtime: runtime,
		logger:  logger,
		watches: make(map[string]*dirWatch),
	}
	s.exec = watch.NewExecutor(s.stats.observe(observer), watch.Options{
		Logger:   logger,
		Repeated: opts.Repeated,
	})
	return s
}

// Executor returns the executor events are processed by.
func (s *Service) Executor() *watch.Executor {
	return s.exec
}

// Queue returns the Redis queue source, or nil.
func (s *Service) Queue() *source.Queue {
	return s.queue
}

// Filters returns the runtime ignore patterns, which can be changed while running.
func (s *Service) Filters() *filter.Matcher {
	return s.runtime
}

// Ignore returns the configured ignore patterns.
func (s *Service) Ignore() *filter.Matcher {
	return s.ignore
}

// Filter returns the combined notification filter.
func (s *Service) Filter() watch.Filter {
	filters := []watch.Filter{s.ignore.Filter(), s.runtime.Filter()}
	if len(s.opts.Kinds) > 0 {
		filters = append(filters, filter.Kinds(s.opts.Kinds...))
	}
	if len(s.opts.IgnoreSessions) > 0 {
		filters = append(filters, filter.Sessions(s.opts.IgnoreSessions...))
	}
	return watch.AnyOf(filters...)
}

// Watch starts watching a directory tree.
func (s *Service) Watch(ctx context.Context, root string) (Watch, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Watch{}, fmt.Errorf("watch %s: %w", root, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watches[abs]; ok {
		return Watch{}, fmt.Errorf("watch %s: %w", abs, ErrAlreadyWatching)
	}

	w, err := source.NewDirWatcher(abs, source.DirOptions{
		Context: s.opts.Context,
		Window:  s.opts.Window,
		MaxWait: s.opts.MaxWait,
		Ignore:  s.ignore,
		Logger:  s.logger.With(slog.String("root", abs)),
	})
	if err != nil {
		return Watch{}, err
	}
	dw := &dirWatch{w: w, started: time.Now(), done: make(chan struct{})}
	s.watches[abs] = dw

	go func() {
		defer close(dw.done)
		s.consume(context.WithoutCancel(ctx), abs, w.Keys())
	}()

	s.logger.Info("watching", slog.String("root", abs), slog.Int("dirs", w.Watched()))
	return Watch{Root: abs, Dirs: w.Watched(), Started: dw.started}, nil
}

// Unwatch stops watching root. Keys already emitted are still processed.
func (s *Service) Unwatch(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("unwatch %s: %w", root, err)
	}

	s.mu.Lock()
	dw, ok := s.watches[abs]
	delete(s.watches, abs)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unwatch %s: %w", abs, ErrNotWatching)
	}

	err = dw.w.Close()
	<-dw.done
	s.logger.Info("unwatched", slog.String("root", abs))
	return err
}

// Watches returns the active watches sorted by root.
func (s *Service) Watches() []Watch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Watch, 0, len(s.watches))
	for root, dw := range s.watches {
		out = append(out, Watch{Root: root, Dirs: dw.w.Watched(), Started: dw.started})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Root < out[j].Root })
	return out
}

// Run drains the Redis queue until ctx is done, then closes every watch. It returns nil
// when ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	if s.queue != nil {
		g.Go(func() error {
			s.consume(gctx, "queue:"+s.queue.Key(), s.queue.Poll(gctx, s.opts.PollInterval))
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return s.Close()
	})
	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close stops every directory watch.
func (s *Service) Close() error {
	s.mu.Lock()
	roots := make([]string, 0, len(s.watches))
	for root := range s.watches {
		roots = append(roots, root)
	}
	s.mu.Unlock()

	var errs []error
	for _, root := range roots {
		if err := s.Unwatch(root); err != nil && !errors.Is(err, ErrNotWatching) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Process runs one key through the executor, as if a source had emitted it.
func (s *Service) Process(ctx context.Context, origin string, key watch.Key) error {
	notifications := key.PollEvents()
	cycle := uuid.NewString()
	s.stats.cycles.Add(1)
	s.stats.notifications.Add(uint64(len(notifications)))

	err := s.exec.Process(ctx, notifications, s.Filter())
	if err != nil {
		s.stats.errors.Add(1)
		s.logger.Warn("dispatch failed",
			slog.String("source", origin),
			slog.String("cycle", cycle),
			slog.Any("error", err))
		return err
	}
	s.logger.Debug("cycle processed",
		slog.String("source", origin),
		slog.String("cycle", cycle),
		slog.Int("notifications", len(notifications)))
	return nil
}

func (s *Service) consume(ctx context.Context, origin string, keys <-chan watch.Key) {
	for key := range keys {
		_ = s.Process(ctx, origin, key)
	}
}

// Stats returns a snapshot of the service counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	watches := len(s.watches)
	s.mu.Unlock()
	st := s.stats.snapshot()
	st.Watches = watches
	st.Policy = s.exec.RepeatedPolicy()
	return st
}

// Stats is a snapshot of what a Service has processed.
type Stats struct {
	Cycles        uint64
	Notifications uint64
	Events        map[string]uint64
	Errors        uint64
	Watches       int
	Policy        watch.RepeatedChangePolicy
}

// Dispatched returns the total number of events delivered.
func (st Stats) Dispatched() uint64 {
	var n uint64
	for _, v := range st.Events {
		n += v
	}
	return n
}

type counters struct {
	cycles        atomic.Uint64
	notifications atomic.Uint64
	errors        atomic.Uint64
	updated       atomic.Uint64
	added         atomic.Uint64
	renamed       atomic.Uint64
	deleted       atomic.Uint64
	batch         atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Cycles:        c.cycles.Load(),
		Notifications: c.notifications.Load(),
		Errors:        c.errors.Load(),
		Events: map[string]uint64{
			"updated": c.updated.Load(),
			"added":   c.added.Load(),
			"renamed": c.renamed.Load(),
			"deleted": c.deleted.Load(),
			"batch":   c.batch.Load(),
		},
	}
}

// observe counts every event handed to observer.
func (c *counters) observe(observer watch.ResourceObserver) watch.ResourceObserver {
	if observer == nil {
		observer = watch.ObserverFuncs{}
	}
	return watch.ObserverFuncs{
		Updated: func(ctx context.Context, e watch.ResourceUpdatedEvent) error {
			c.updated.Add(1)
			return observer.OnResourceUpdated(ctx, e)
		},
		Added: func(ctx context.Context, e watch.ResourceAddedEvent) error {
			c.added.Add(1)
			return observer.OnResourceAdded(ctx, e)
		},
		Renamed: func(ctx context.Context, e watch.ResourceRenamedEvent) error {
			c.renamed.Add(1)
			return observer.OnResourceRenamed(ctx, e)
		},
		Deleted: func(ctx context.Context, e watch.ResourceDeletedEvent) error {
			c.deleted.Add(1)
			return observer.OnResourceDeleted(ctx, e)
		},
		Batch: func(ctx context.Context, e watch.ResourceBatchChangesEvent) error {
			c.batch.Add(1)
			return observer.OnResourceBatchChanged(ctx, e)
		},
	}
}
