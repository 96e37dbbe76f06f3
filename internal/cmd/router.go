package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rowantrollope/redis-fs-events/internal/config"
	"github.com/rowantrollope/redis-fs-events/internal/output"
	"github.com/rowantrollope/redis-fs-events/internal/service"
)

// State holds the current session state.
type State struct {
	Volume    string
	SessionID string
	// Running is set while the service loop runs in the background (REPL mode).
	Running bool
}

// Router dispatches commands to the appropriate handler.
type Router struct {
	Service   *service.Service
	Redis     *redis.Client
	Config    *config.Config
	Formatter *output.Formatter
	State     *State
	handlers  map[string]Handler
}

// Handler is a function that handles a command.
type Handler func(ctx context.Context, args []string) error

// NewRouter creates a command router with all registered handlers.
func NewRouter(svc *service.Service, rdb *redis.Client, cfg *config.Config, formatter *output.Formatter, sessionID string) *Router {
	r := &Router{
		Service:   svc,
		Redis:     rdb,
		Config:    cfg,
		Formatter: formatter,
		State: &State{
			Volume:    cfg.Volume,
			SessionID: sessionID,
		},
		handlers: make(map[string]Handler),
	}
	r.registerHandlers()
	return r
}

func (r *Router) registerHandlers() {
	r.handlers["watch"] = r.handleWatch
	r.handlers["unwatch"] = r.handleUnwatch
	r.handlers["list"] = r.handleList
	r.handlers["notify"] = r.handleNotify
	r.handlers["tail"] = r.handleTail
	r.handlers["stats"] = r.handleStats
	r.handlers["filter"] = r.handleFilter
	r.handlers["policy"] = r.handlePolicy
	r.handlers["run"] = r.handleRun
	r.handlers["help"] = r.handleHelp
	r.handlers["clear"] = r.handleClear
}

// Execute runs a parsed command line.
func (r *Router) Execute(ctx context.Context, line string) error {
	tokens, err := Tokenize(line)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	handler, ok := r.handlers[cmd]
	if !ok {
		return fmt.Errorf("unknown command '%s' (try 'help')", cmd)
	}
	return handler(ctx, args)
}

// IsBuiltin returns true if the command is a known command.
func (r *Router) IsBuiltin(cmd string) bool {
	_, ok := r.handlers[strings.ToLower(cmd)]
	return ok
}

// CommandNames returns all registered command names, sorted.
func (r *Router) CommandNames() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
