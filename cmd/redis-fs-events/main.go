package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rowantrollope/redis-fs-events/internal/cli"
	"github.com/rowantrollope/redis-fs-events/internal/cmd"
	"github.com/rowantrollope/redis-fs-events/internal/config"
	"github.com/rowantrollope/redis-fs-events/internal/filter"
	"github.com/rowantrollope/redis-fs-events/internal/output"
	"github.com/rowantrollope/redis-fs-events/internal/service"
	"github.com/rowantrollope/redis-fs-events/internal/sink"
	"github.com/rowantrollope/redis-fs-events/internal/source"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
	flag "github.com/spf13/pflag"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.DefaultConfig()

	// Custom flag set to avoid os.Exit on parse error
	flags := flag.NewFlagSet("redis-fs-events", flag.ContinueOnError)
	flags.SetInterspersed(false) // Stop parsing at first non-flag arg (the command)
	cfg.RegisterFlags(flags)
	showVersion := flags.Bool("version", false, "Show version and exit")

	// Parse flags; remaining args are the single-command
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}
	cfg.Args = flags.Args()

	if *showVersion {
		fmt.Printf("redis-fs-events %s\n", version)
		return 0
	}

	if cfg.ConfigFile != "" {
		file, err := config.LoadFile(cfg.ConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 2
		}
		if err := cfg.Apply(file, flags); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 2
		}
	}

	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	policy, err := cfg.RepeatedPolicy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}
	kinds, err := cfg.WatchKinds()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}
	ignore, err := filter.NewMatcher(cfg.Ignore...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}

	// Set up color
	if !cfg.ShouldColor() {
		color.NoColor = true
	}

	formatter := output.NewFormatter(cfg.JSON, cfg.ShouldColor())

	// Connect to Redis
	ctx := context.Background()
	rdb := redis.NewClient(cfg.RedisOptions())

	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot connect to Redis at %s: %s\n", cfg.Addr(), err)
		return 1
	}
	defer rdb.Close()

	sessionID := uuid.NewString()
	logger = logger.With(slog.String("volume", cfg.Volume), slog.String("session", sessionID))

	var queue *source.Queue
	if !cfg.NoQueue {
		queue = source.NewQueue(rdb, cfg.Volume, logger)
	}

	observer := sink.Fanout{
		sink.NewPublisher(rdb, cfg.Volume),
		output.Console{Formatter: formatter},
	}
	svc := service.New(observer, queue, service.Options{
		Context: watch.Context{
			Message:   cfg.Message,
			SessionID: sessionID,
			User:      cfg.User,
		},
		Window:         cfg.Debounce,
		MaxWait:        cfg.MaxWait,
		PollInterval:   cfg.PollInterval,
		Ignore:         ignore,
		Kinds:          kinds,
		IgnoreSessions: cfg.IgnoreSessions,
		Repeated:       policy,
		Logger:         logger,
	})
	defer svc.Close()

	// Create router
	router := cmd.NewRouter(svc, rdb, cfg, formatter, sessionID)

	// Single-command mode
	if len(cfg.Args) > 0 {
		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		line := strings.Join(cfg.Args, " ")
		if err := router.Execute(sigCtx, line); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		return 0
	}

	// Interactive REPL mode
	repl := cli.NewREPL(router, cfg, formatter, logger)
	if err := repl.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}
