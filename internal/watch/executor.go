package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Sink names used in logs, errors and Recorder calls.
const (
	SinkUpdated = "resource_updated"
	SinkAdded   = "resource_added"
	SinkRenamed = "resource_renamed"
	SinkDeleted = "resource_deleted"
	SinkBatch   = "resource_batch_changed"
)

// Options configures an Executor.
type Options struct {
	Logger   *slog.Logger
	Repeated RepeatedChangePolicy
}

// Executor aggregates the notifications of one poll cycle and dispatches the result to
// a ResourceObserver. It keeps no state between calls.
type Executor struct {
	observer ResourceObserver
	logger   *slog.Logger
	repeated atomic.Int32
}

// NewExecutor creates an Executor that fires into observer. A nil observer discards
// every event.
func NewExecutor(observer ResourceObserver, opts Options) *Executor {
	if observer == nil {
		observer = ObserverFuncs{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Executor{
		observer: observer,
		logger:   logger,
	}
	e.repeated.Store(int32(opts.Repeated))
	return e
}

// SetRepeatedPolicy changes how a single path with several changes is dispatched.
// It is safe to call while other goroutines are executing.
func (e *Executor) SetRepeatedPolicy(p RepeatedChangePolicy) {
	e.repeated.Store(int32(p))
}

// RepeatedPolicy returns the current repeated-change policy.
func (e *Executor) RepeatedPolicy() RepeatedChangePolicy {
	return RepeatedChangePolicy(e.repeated.Load())
}

// Execute drains key and processes its notifications.
func (e *Executor) Execute(ctx context.Context, key Key, filter Filter) error {
	if key == nil {
		return nil
	}
	return e.Process(ctx, key.PollEvents(), filter)
}

// Process classifies the notifications of one poll cycle and fires at most one observer
// call. Notifications for which filter returns true are ignored. The observer's error,
// if any, is returned wrapped with the sink name.
func (e *Executor) Process(ctx context.Context, notifications []Notification, filter Filter) error {
	switch len(notifications) {
	case 0:
		return nil
	case 1:
		return e.processSingle(ctx, notifications[0], filter)
	default:
		return e.processBatch(ctx, notifications, filter)
	}
}

func (e *Executor) processSingle(ctx context.Context, n Notification, filter Filter) error {
	if filter.Drop(n) {
		e.logger.Debug("notification filtered", slog.String("kind", n.Kind.String()))
		return nil
	}
	event, ok := BuildEvent(n)
	if !ok {
		e.logDiscarded(n)
		return nil
	}
	return e.dispatch(ctx, event)
}

func (e *Executor) processBatch(ctx context.Context, notifications []Notification, filter Filter) error {
	var first *Context
	group := NewChangeGroup()
	for _, n := range notifications {
		if filter.Drop(n) {
			continue
		}
		if first == nil {
			c := n.Context
			first = &c
		}
		path, change, ok := Classify(n)
		if !ok {
			e.logDiscarded(n)
			continue
		}
		group.add(path, change)
	}

	if first == nil || group.Len() == 0 {
		e.logger.Debug("poll cycle produced no changes", slog.Int("notifications", len(notifications)))
		return nil
	}

	if path, change, ok := group.Single(); ok {
		return e.dispatch(ctx, ToEvent(path, change, *first))
	}
	if group.Len() > 1 {
		return e.dispatch(ctx, NewBatchEvent(group, *first))
	}

	policy := e.RepeatedPolicy()
	path := group.Paths()[0]
	switch policy {
	case RepeatedDrop:
		e.logger.Debug("repeated changes dropped",
			slog.String("path", path),
			slog.Int("changes", group.Count()))
		return nil
	case RepeatedFirst:
		return e.dispatch(ctx, ToEvent(path, group.Changes(path)[0], *first))
	default:
		return e.dispatch(ctx, NewBatchEvent(group, *first))
	}
}

func (e *Executor) logDiscarded(n Notification) {
	e.logger.Debug("notification discarded",
		slog.String("kind", n.Kind.String()),
		slog.String("old_path", n.Context.OldPath),
		slog.String("path", n.Context.Path))
}

func (e *Executor) dispatch(ctx context.Context, event ResourceEvent) error {
	var (
		sink string
		err  error
	)
	switch ev := event.(type) {
	case ResourceUpdatedEvent:
		sink, err = SinkUpdated, e.observer.OnResourceUpdated(ctx, ev)
	case ResourceAddedEvent:
		sink, err = SinkAdded, e.observer.OnResourceAdded(ctx, ev)
	case ResourceRenamedEvent:
		sink, err = SinkRenamed, e.observer.OnResourceRenamed(ctx, ev)
	case ResourceDeletedEvent:
		sink, err = SinkDeleted, e.observer.OnResourceDeleted(ctx, ev)
	case ResourceBatchChangesEvent:
		sink, err = SinkBatch, e.observer.OnResourceBatchChanged(ctx, ev)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", sink, err)
	}
	return nil
}
