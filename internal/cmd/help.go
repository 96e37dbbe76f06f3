package cmd

import (
	"context"
	"fmt"
)

var commandHelp = map[string]string{
	"watch":   "watch dir...                   Watch directory trees for changes",
	"unwatch": "unwatch dir... | --all         Stop watching directories",
	"list":    "list                           List active watches",
	"notify":  "notify kind path [dest] [-m msg] [--user u] [--session s]  Queue a raw notification",
	"tail":    "tail [-n N] [--all]            Print published events",
	"stats":   "stats                          Show processing counters",
	"filter":  "filter add|list|clear [pattern...]  Manage runtime ignore patterns",
	"policy":  "policy [batch|drop|first]      Show or set the repeated-change policy",
	"run":     "run [dir...]                   Watch and process until interrupted",
	"help":    "help [command]                 Show this help",
	"clear":   "clear                          Clear the terminal",
	"exit":    "exit / quit                    Exit the REPL",
}

func (r *Router) handleHelp(ctx context.Context, args []string) error {
	if len(args) > 0 {
		cmd := args[0]
		if help, ok := commandHelp[cmd]; ok {
			fmt.Fprintln(r.Formatter.Writer, help)
		} else {
			fmt.Fprintf(r.Formatter.Writer, "No help available for '%s'\n", cmd)
		}
		return nil
	}

	fmt.Fprintln(r.Formatter.Writer, "redis-fs-events: filesystem change events on Redis")
	fmt.Fprintln(r.Formatter.Writer, "")
	fmt.Fprintln(r.Formatter.Writer, "Watch commands:")
	for _, cmd := range []string{"watch", "unwatch", "list", "run"} {
		fmt.Fprintf(r.Formatter.Writer, "  %s\n", commandHelp[cmd])
	}
	fmt.Fprintln(r.Formatter.Writer, "")
	fmt.Fprintln(r.Formatter.Writer, "Event commands:")
	for _, cmd := range []string{"notify", "tail", "stats", "filter", "policy"} {
		fmt.Fprintf(r.Formatter.Writer, "  %s\n", commandHelp[cmd])
	}
	fmt.Fprintln(r.Formatter.Writer, "")
	fmt.Fprintln(r.Formatter.Writer, "Other:")
	fmt.Fprintf(r.Formatter.Writer, "  %s\n", commandHelp["help"])
	fmt.Fprintf(r.Formatter.Writer, "  %s\n", commandHelp["clear"])
	fmt.Fprintf(r.Formatter.Writer, "  %s\n", commandHelp["exit"])
	fmt.Fprintln(r.Formatter.Writer, "")
	fmt.Fprintf(r.Formatter.Writer, "Events are published on fs:%s:events.\n", r.State.Volume)
	return nil
}

func (r *Router) handleClear(ctx context.Context, args []string) error {
	if r.Formatter.JSON {
		return nil
	}
	// clear screen, cursor home
	r.Formatter.Printf("\033[2J\033[H")
	return nil
}
