package cmd

import (
	"context"
	"fmt"

	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

func (r *Router) handlePolicy(ctx context.Context, args []string) error {
	exec := r.Service.Executor()
	if len(args) == 0 {
		if r.Formatter.JSON {
			return r.Formatter.PrintJSON(map[string]string{"repeated": exec.RepeatedPolicy().String()})
		}
		fmt.Fprintln(r.Formatter.Writer, exec.RepeatedPolicy())
		return nil
	}

	p, err := watch.ParseRepeatedChangePolicy(args[0])
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	exec.SetRepeatedPolicy(p)
	return nil
}
