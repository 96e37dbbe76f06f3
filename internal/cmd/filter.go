package cmd

import (
	"context"
	"fmt"
	"strings"
)

func (r *Router) handleFilter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("filter: usage: filter add|list|clear")
	}

	subcmd := strings.ToLower(args[0])
	subargs := args[1:]

	switch subcmd {
	case "add":
		if len(subargs) == 0 {
			return fmt.Errorf("filter add: missing pattern")
		}
		return r.Service.Filters().Add(subargs...)
	case "list":
		return r.filterList()
	case "clear":
		r.Service.Filters().Clear()
		return nil
	default:
		return fmt.Errorf("filter: unknown subcommand '%s'", subcmd)
	}
}

func (r *Router) filterList() error {
	configured := r.Service.Ignore().Patterns()
	runtime := r.Service.Filters().Patterns()

	if r.Formatter.JSON {
		if configured == nil {
			configured = []string{}
		}
		if runtime == nil {
			runtime = []string{}
		}
		return r.Formatter.PrintJSON(map[string][]string{
			"configured": configured,
			"runtime":    runtime,
		})
	}

	var items []string
	for _, p := range configured {
		items = append(items, "  "+p+"  (config)")
	}
	for _, p := range runtime {
		items = append(items, "* "+p)
	}
	r.Formatter.PrintList(items, "(no filters)")
	return nil
}
