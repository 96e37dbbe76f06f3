package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rowantrollope/redis-fs-events/internal/fs"
	"github.com/rowantrollope/redis-fs-events/internal/sink"
	flag "github.com/spf13/pflag"
)

func (r *Router) handleTail(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tail", flag.ContinueOnError)
	count := fs.IntP("count", "n", 0, "Stop after N events (0 = until interrupted)")
	all := fs.Bool("all", false, "Follow every volume")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if r.Redis == nil {
		return fmt.Errorf("tail: no Redis connection")
	}

	return r.tail(ctx, *all, *count)
}

func (r *Router) tail(ctx context.Context, all bool, count int) error {
	keys := fs.NewKeyGen(r.State.Volume)
	var pubsub *redis.PubSub
	if all {
		pubsub = r.Redis.PSubscribe(ctx, fs.EventsPattern())
	} else {
		pubsub = r.Redis.Subscribe(ctx, keys.Events())
	}
	defer pubsub.Close()

	// Wait for the subscription to be confirmed so no event is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("tail: %w", err)
	}

	ch := pubsub.Channel()
	seen := 0
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			env, err := sink.Decode([]byte(msg.Payload))
			if err != nil {
				r.Formatter.Errorf("%s: %s\n", msg.Channel, err)
				continue
			}
			if err := r.Formatter.PrintEvent(env); err != nil {
				return err
			}
			seen++
			if count > 0 && seen >= count {
				return nil
			}
		}
	}
}
