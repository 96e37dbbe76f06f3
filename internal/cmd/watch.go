package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rowantrollope/redis-fs-events/internal/output"
	flag "github.com/spf13/pflag"
)

func (r *Router) handleWatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("watch: missing directory")
	}
	// A failing root undoes the roots this call already added.
	var added []string
	for _, dir := range args {
		w, err := r.Service.Watch(ctx, dir)
		if err != nil {
			for _, root := range added {
				err = errors.Join(err, r.Service.Unwatch(root))
			}
			return err
		}
		added = append(added, w.Root)
		if !r.Formatter.JSON {
			fmt.Fprintf(r.Formatter.Writer, "watching %s (%d dirs)\n", w.Root, w.Dirs)
		}
	}
	return nil
}

func (r *Router) handleUnwatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("unwatch", flag.ContinueOnError)
	all := fs.Bool("all", false, "Stop every watch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *all {
		return r.Service.Close()
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("unwatch: missing directory")
	}
	for _, dir := range fs.Args() {
		if err := r.Service.Unwatch(dir); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) handleList(ctx context.Context, args []string) error {
	var infos []output.WatchInfo
	for _, w := range r.Service.Watches() {
		infos = append(infos, output.WatchInfo{
			Root:    w.Root,
			Dirs:    w.Dirs,
			Started: w.Started.Format(time.RFC3339),
		})
	}
	r.Formatter.PrintWatches(infos)
	return nil
}

// handleRun watches the given roots plus the configured ones and processes events until
// ctx is done.
func (r *Router) handleRun(ctx context.Context, args []string) error {
	if r.State.Running {
		return fmt.Errorf("run: already running (use 'watch' to add directories)")
	}

	roots := append(append([]string{}, r.Config.Roots...), args...)
	if len(roots) == 0 && r.Service.Queue() == nil {
		return fmt.Errorf("run: no directories to watch and queue disabled")
	}
	if len(roots) > 0 {
		if err := r.handleWatch(ctx, roots); err != nil {
			return errors.Join(err, r.Service.Close())
		}
	}

	r.State.Running = true
	defer func() { r.State.Running = false }()
	return r.Service.Run(ctx)
}
