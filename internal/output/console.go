package output

import (
	"context"
	"time"

	"github.com/rowantrollope/redis-fs-events/internal/sink"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

// Console is a watch.ResourceObserver that prints every event through a Formatter.
// Events are stamped with the time they are printed.
type Console struct {
	Formatter *Formatter
	now       func() time.Time
}

func (c Console) OnResourceUpdated(_ context.Context, event watch.ResourceUpdatedEvent) error {
	return c.print(event)
}

func (c Console) OnResourceAdded(_ context.Context, event watch.ResourceAddedEvent) error {
	return c.print(event)
}

func (c Console) OnResourceRenamed(_ context.Context, event watch.ResourceRenamedEvent) error {
	return c.print(event)
}

func (c Console) OnResourceDeleted(_ context.Context, event watch.ResourceDeletedEvent) error {
	return c.print(event)
}

func (c Console) OnResourceBatchChanged(_ context.Context, event watch.ResourceBatchChangesEvent) error {
	return c.print(event)
}

func (c Console) print(event watch.ResourceEvent) error {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	env := sink.NewEnvelope(event)
	ts := now().UTC()
	env.Time = &ts
	return c.Formatter.PrintEvent(env)
}
