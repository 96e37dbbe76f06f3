package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rowantrollope/redis-fs-events/internal/cmd"
)

var subcommands = map[string][]string{
	"filter": {"add", "clear", "list"},
	"policy": {"batch", "drop", "first"},
	"notify": {"create", "delete", "modify", "rename"},
}

// NewCompleter creates a tab completer for the REPL.
func NewCompleter(router *cmd.Router) *Completer {
	return &Completer{router: router}
}

// Completer provides tab completion for the REPL.
type Completer struct {
	router *cmd.Router
}

// Do implements readline.AutoCompleter.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	lineStr := string(line[:pos])
	parts := strings.Fields(lineStr)

	// Complete command name
	if len(parts) == 0 || (len(parts) == 1 && !strings.HasSuffix(lineStr, " ")) {
		prefix := ""
		if len(parts) == 1 {
			prefix = parts[0]
		}
		return complete(c.router.CommandNames(), prefix, " "), len(prefix)
	}

	partial := ""
	if !strings.HasSuffix(lineStr, " ") {
		partial = parts[len(parts)-1]
	}

	// Skip flag-like args
	if strings.HasPrefix(partial, "-") {
		return nil, 0
	}

	command := strings.ToLower(parts[0])
	argIndex := len(parts) - 1
	if partial == "" {
		argIndex = len(parts)
	}

	if argIndex == 1 {
		if command == "help" {
			return complete(c.router.CommandNames(), partial, " "), len(partial)
		}
		if words, ok := subcommands[command]; ok {
			return complete(words, partial, " "), len(partial)
		}
	}

	switch command {
	case "unwatch":
		var roots []string
		for _, w := range c.router.Service.Watches() {
			roots = append(roots, w.Root)
		}
		return complete(roots, partial, " "), len(partial)
	case "watch", "run":
		return completeDir(partial), len(partial)
	}
	return nil, 0
}

func complete(words []string, prefix, suffix string) [][]rune {
	var candidates []string
	for _, w := range words {
		if strings.HasPrefix(w, strings.ToLower(prefix)) || strings.HasPrefix(w, prefix) {
			candidates = append(candidates, w)
		}
	}
	sort.Strings(candidates)

	result := make([][]rune, len(candidates))
	for i, c := range candidates {
		result[i] = []rune(c[len(prefix):] + suffix)
	}
	return result
}

// completeDir completes local directory names.
func completeDir(partial string) [][]rune {
	dir := "."
	prefix := partial
	if strings.Contains(partial, "/") {
		lastSlash := strings.LastIndex(partial, "/")
		dir = partial[:lastSlash+1]
		prefix = partial[lastSlash+1:]
	}
	if strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[2:])
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var candidates [][]rune
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if strings.HasPrefix(e.Name(), ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		candidates = append(candidates, []rune(e.Name()[len(prefix):]+"/"))
	}
	return candidates
}

// Ensure Completer satisfies the readline.AutoCompleter interface.
var _ readline.AutoCompleter = (*Completer)(nil)
