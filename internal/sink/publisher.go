package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rowantrollope/redis-fs-events/internal/fs"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

// Publisher publishes resource events as JSON envelopes on the volume's Redis channel.
// It implements watch.ResourceObserver.
type Publisher struct {
	rdb     *redis.Client
	channel string
	now     func() time.Time
}

// NewPublisher creates a Publisher for the given volume.
func NewPublisher(rdb *redis.Client, volume string) *Publisher {
	return &Publisher{
		rdb:     rdb,
		channel: fs.NewKeyGen(volume).Events(),
		now:     time.Now,
	}
}

// Channel returns the pub/sub channel events are published on.
func (p *Publisher) Channel() string {
	return p.channel
}

func (p *Publisher) OnResourceUpdated(ctx context.Context, event watch.ResourceUpdatedEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) OnResourceAdded(ctx context.Context, event watch.ResourceAddedEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) OnResourceRenamed(ctx context.Context, event watch.ResourceRenamedEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) OnResourceDeleted(ctx context.Context, event watch.ResourceDeletedEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) OnResourceBatchChanged(ctx context.Context, event watch.ResourceBatchChangesEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) publish(ctx context.Context, event watch.ResourceEvent) error {
	env := NewEnvelope(event)
	now := p.now().UTC()
	env.Time = &now
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
