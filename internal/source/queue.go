package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rowantrollope/redis-fs-events/internal/fs"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

const defaultPollInterval = 500 * time.Millisecond

// Queue is a watch key stored in a Redis list. Producers push raw notifications; each
// drain atomically takes everything pushed since the previous one.
type Queue struct {
	rdb    *redis.Client
	keys   *fs.KeyGen
	logger *slog.Logger
}

// NewQueue creates a Queue for the given volume.
func NewQueue(rdb *redis.Client, volume string, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Queue{
		rdb:    rdb,
		keys:   fs.NewKeyGen(volume),
		logger: logger,
	}
}

// Key returns the Redis list name.
func (q *Queue) Key() string {
	return q.keys.Queue()
}

// Push appends notifications to the queue in order.
func (q *Queue) Push(ctx context.Context, notifications ...watch.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("push: %w", err)
		}
		values = append(values, data)
	}
	if err := q.rdb.RPush(ctx, q.Key(), values...).Err(); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

// Len returns the number of notifications waiting in the queue.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.Key()).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// Drain takes every queued notification. Entries that fail to decode are logged and
// skipped so one bad producer cannot block the rest of the cycle.
func (q *Queue) Drain(ctx context.Context) (watch.Batch, error) {
	pipe := q.rdb.TxPipeline()
	items := pipe.LRange(ctx, q.Key(), 0, -1)
	pipe.Del(ctx, q.Key())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("drain: %w", err)
	}

	raw := items.Val()
	batch := make(watch.Batch, 0, len(raw))
	for _, item := range raw {
		var n watch.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			q.logger.Warn("skipping undecodable notification",
				slog.String("queue", q.Key()),
				slog.Any("error", err))
			continue
		}
		batch = append(batch, n)
	}
	return batch, nil
}

// Poll drains the queue every interval and emits each non-empty drain as a key. The
// returned channel is closed when ctx is done.
func (q *Queue) Poll(ctx context.Context, interval time.Duration) <-chan watch.Key {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	keys := make(chan watch.Key)
	go func() {
		defer close(keys)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			batch, err := q.Drain(ctx)
			if err != nil {
				if ctx.Err() == nil {
					q.logger.Warn("queue drain failed", slog.Any("error", err))
				}
				continue
			}
			if len(batch) == 0 {
				continue
			}
			select {
			case keys <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()
	return keys
}
