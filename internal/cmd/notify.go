package cmd

import (
	"context"
	"fmt"

	"github.com/rowantrollope/redis-fs-events/internal/fs"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
	flag "github.com/spf13/pflag"
)

func (r *Router) handleNotify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	message := fs.StringP("message", "m", r.Config.Message, "Change message")
	user := fs.String("user", r.Config.User, "User to attribute the change to")
	session := fs.String("session", r.State.SessionID, "Session to attribute the change to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("notify: usage: notify kind path [dest]")
	}

	kind, err := watch.ParseKind(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	n, err := buildNotification(kind, fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}
	n.Context.Message = *message
	n.Context.User = *user
	n.Context.SessionID = *session

	if q := r.Service.Queue(); q != nil {
		return q.Push(ctx, n)
	}
	return r.Service.Process(ctx, "notify", watch.Batch{n})
}

// buildNotification places path and dest in the context fields the classifier reads
// for kind.
func buildNotification(kind watch.Kind, path, dest string) (watch.Notification, error) {
	path = fs.NormalizePath(path)
	n := watch.Notification{Kind: kind}
	switch kind {
	case watch.KindCreate:
		n.Context.Path = path
	case watch.KindRename:
		if dest == "" {
			return n, fmt.Errorf("notify: rename needs a destination")
		}
		n.Context.OldPath = path
		n.Context.Path = fs.NormalizePath(dest)
	case watch.KindModify, watch.KindDelete:
		n.Context.OldPath = path
	default:
		n.Context.OldPath = path
		n.Context.Path = path
	}
	return n, nil
}
