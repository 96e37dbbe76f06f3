// Package source produces watch keys: batches of raw notifications, one per poll cycle.
package source

import (
	"sync"
	"time"

	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

const (
	defaultWindow  = 100 * time.Millisecond
	defaultMaxWait = time.Second
	defaultBuffer  = 16
)

// Batcher groups notifications that arrive close together into one watch key. A key is
// emitted once no notification has arrived for the quiet window, or once the first
// pending notification is older than maxWait.
type Batcher struct {
	window   time.Duration
	maxWait  time.Duration
	prepare  func(watch.Batch) watch.Batch
	in       chan watch.Notification
	keys     chan watch.Key
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewBatcher starts a Batcher. prepare, when non-nil, rewrites each batch just before it
// is emitted; empty results are not emitted.
func NewBatcher(window, maxWait time.Duration, prepare func(watch.Batch) watch.Batch) *Batcher {
	if window <= 0 {
		window = defaultWindow
	}
	if maxWait < window {
		maxWait = max(defaultMaxWait, window)
	}
	b := &Batcher{
		window:  window,
		maxWait: maxWait,
		prepare: prepare,
		in:      make(chan watch.Notification, defaultBuffer),
		keys:    make(chan watch.Key, defaultBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go b.run()
	return b
}

// Add queues a notification for the current cycle. It is a no-op after Close.
func (b *Batcher) Add(n watch.Notification) {
	select {
	case b.in <- n:
	case <-b.done:
	}
}

// Keys returns the channel of emitted keys. It is closed after Close.
func (b *Batcher) Keys() <-chan watch.Key {
	return b.keys
}

// Close stops the Batcher. Pending notifications are emitted if the key channel has room.
func (b *Batcher) Close() {
	b.stopOnce.Do(func() {
		close(b.done)
	})
	<-b.stopped
}

func (b *Batcher) run() {
	defer close(b.stopped)
	defer close(b.keys)

	var (
		pending  watch.Batch
		quiet    = time.NewTimer(b.window)
		deadline = time.NewTimer(b.maxWait)
	)
	quiet.Stop()
	deadline.Stop()
	defer quiet.Stop()
	defer deadline.Stop()

	take := func() watch.Key {
		batch := pending
		pending = nil
		quiet.Stop()
		deadline.Stop()
		if b.prepare != nil {
			batch = b.prepare(batch)
		}
		if len(batch) == 0 {
			return nil
		}
		return batch
	}

	for {
		select {
		case n := <-b.in:
			if len(pending) == 0 {
				deadline.Reset(b.maxWait)
			}
			pending = append(pending, n)
			quiet.Reset(b.window)
		case <-quiet.C:
			b.emit(take())
		case <-deadline.C:
			b.emit(take())
		case <-b.done:
			if key := take(); key != nil {
				select {
				case b.keys <- key:
				default:
				}
			}
			return
		}
	}
}

func (b *Batcher) emit(key watch.Key) {
	if key == nil {
		return
	}
	select {
	case b.keys <- key:
	case <-b.done:
	}
}
