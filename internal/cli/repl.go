package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rowantrollope/redis-fs-events/internal/cmd"
	"github.com/rowantrollope/redis-fs-events/internal/config"
	"github.com/rowantrollope/redis-fs-events/internal/output"
)

// REPL is the interactive read-eval-print loop.
type REPL struct {
	Router    *cmd.Router
	Config    *config.Config
	Formatter *output.Formatter
	Logger    *slog.Logger
}

// NewREPL creates a new REPL instance.
func NewREPL(router *cmd.Router, cfg *config.Config, formatter *output.Formatter, logger *slog.Logger) *REPL {
	return &REPL{
		Router:    router,
		Config:    cfg,
		Formatter: formatter,
		Logger:    logger,
	}
}

// Run starts the interactive REPL loop. The service runs in the background for the
// lifetime of the loop and every configured root is watched up front.
func (r *REPL) Run(ctx context.Context) error {
	completer := NewCompleter(r.Router)
	svc := r.Router.Service

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.prompt(),
		HistoryFile:     r.Config.HistoryFile,
		HistoryLimit:    10000,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer rl.Close()

	// Events arrive while the prompt is shown; write through readline so it redraws.
	r.Formatter.Writer = rl.Stdout()
	r.Formatter.ErrWriter = rl.Stderr()

	bg, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	r.Router.State.Running = true
	go func() { done <- svc.Run(bg) }()
	defer func() {
		cancel()
		if err := <-done; err != nil && r.Logger != nil {
			r.Logger.Warn("service stopped with error", slog.Any("error", err))
		}
		r.Router.State.Running = false
	}()

	for _, root := range r.Config.Roots {
		if _, err := svc.Watch(ctx, root); err != nil {
			r.Formatter.Errorf("%s\n", err)
		}
	}

	for {
		// Update prompt each iteration (watch count may have changed)
		rl.SetPrompt(r.prompt())

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle exit/quit
		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			return nil
		}

		// Ctrl-C while a command runs (tail) cancels that command only.
		cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		execErr := r.Router.Execute(cmdCtx, line)
		stop()
		if execErr != nil {
			r.Formatter.Errorf("%s\n", execErr)
		}
	}
}

func (r *REPL) prompt() string {
	return BuildPrompt(r.Router.State.Volume, len(r.Router.Service.Watches()), r.Config.ShouldColor())
}
