package sink

import (
	"context"
	"errors"

	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

// Fanout delivers every event to each of its observers in order. A failing observer
// does not stop delivery to the others; all errors are joined.
type Fanout []watch.ResourceObserver

func (f Fanout) OnResourceUpdated(ctx context.Context, event watch.ResourceUpdatedEvent) error {
	return f.each(func(o watch.ResourceObserver) error { return o.OnResourceUpdated(ctx, event) })
}

func (f Fanout) OnResourceAdded(ctx context.Context, event watch.ResourceAddedEvent) error {
	return f.each(func(o watch.ResourceObserver) error { return o.OnResourceAdded(ctx, event) })
}

func (f Fanout) OnResourceRenamed(ctx context.Context, event watch.ResourceRenamedEvent) error {
	return f.each(func(o watch.ResourceObserver) error { return o.OnResourceRenamed(ctx, event) })
}

func (f Fanout) OnResourceDeleted(ctx context.Context, event watch.ResourceDeletedEvent) error {
	return f.each(func(o watch.ResourceObserver) error { return o.OnResourceDeleted(ctx, event) })
}

func (f Fanout) OnResourceBatchChanged(ctx context.Context, event watch.ResourceBatchChangesEvent) error {
	return f.each(func(o watch.ResourceObserver) error { return o.OnResourceBatchChanged(ctx, event) })
}

func (f Fanout) each(call func(watch.ResourceObserver) error) error {
	var errs []error
	for _, o := range f {
		if o == nil {
			continue
		}
		if err := call(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
