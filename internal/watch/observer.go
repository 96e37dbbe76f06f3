package watch

import (
	"context"
	"sync"
)

// ResourceObserver receives the events produced by an Executor.
// Implementations can publish them, print them, feed caches, etc.
type ResourceObserver interface {
	OnResourceUpdated(ctx context.Context, event ResourceUpdatedEvent) error
	OnResourceAdded(ctx context.Context, event ResourceAddedEvent) error
	OnResourceRenamed(ctx context.Context, event ResourceRenamedEvent) error
	OnResourceDeleted(ctx context.Context, event ResourceDeletedEvent) error
	OnResourceBatchChanged(ctx context.Context, event ResourceBatchChangesEvent) error
}

// ObserverFuncs adapts plain functions to ResourceObserver. Nil fields ignore the event.
type ObserverFuncs struct {
	Updated func(context.Context, ResourceUpdatedEvent) error
	Added   func(context.Context, ResourceAddedEvent) error
	Renamed func(context.Context, ResourceRenamedEvent) error
	Deleted func(context.Context, ResourceDeletedEvent) error
	Batch   func(context.Context, ResourceBatchChangesEvent) error
}

func (f ObserverFuncs) OnResourceUpdated(ctx context.Context, event ResourceUpdatedEvent) error {
	if f.Updated == nil {
		return nil
	}
	return f.Updated(ctx, event)
}

func (f ObserverFuncs) OnResourceAdded(ctx context.Context, event ResourceAddedEvent) error {
	if f.Added == nil {
		return nil
	}
	return f.Added(ctx, event)
}

func (f ObserverFuncs) OnResourceRenamed(ctx context.Context, event ResourceRenamedEvent) error {
	if f.Renamed == nil {
		return nil
	}
	return f.Renamed(ctx, event)
}

func (f ObserverFuncs) OnResourceDeleted(ctx context.Context, event ResourceDeletedEvent) error {
	if f.Deleted == nil {
		return nil
	}
	return f.Deleted(ctx, event)
}

func (f ObserverFuncs) OnResourceBatchChanged(ctx context.Context, event ResourceBatchChangesEvent) error {
	if f.Batch == nil {
		return nil
	}
	return f.Batch(ctx, event)
}

// Recorded is one observer call captured by a Recorder.
type Recorded struct {
	Sink  string
	Event ResourceEvent
}

// Recorder is a ResourceObserver that keeps every call it receives. It is safe for
// concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []Recorded
	// Err, when set, is returned from every call after it is recorded.
	Err error
}

func (r *Recorder) record(sink string, event ResourceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Recorded{Sink: sink, Event: event})
	return r.Err
}

func (r *Recorder) OnResourceUpdated(_ context.Context, event ResourceUpdatedEvent) error {
	return r.record(SinkUpdated, event)
}

func (r *Recorder) OnResourceAdded(_ context.Context, event ResourceAddedEvent) error {
	return r.record(SinkAdded, event)
}

func (r *Recorder) OnResourceRenamed(_ context.Context, event ResourceRenamedEvent) error {
	return r.record(SinkRenamed, event)
}

func (r *Recorder) OnResourceDeleted(_ context.Context, event ResourceDeletedEvent) error {
	return r.record(SinkDeleted, event)
}

func (r *Recorder) OnResourceBatchChanged(_ context.Context, event ResourceBatchChangesEvent) error {
	return r.record(SinkBatch, event)
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.calls))
	copy(out, r.calls)
	return out
}

// Len returns the number of recorded calls.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}
