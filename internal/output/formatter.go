package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rowantrollope/redis-fs-events/internal/sink"
)

// Formatter handles text/JSON/colored output.
type Formatter struct {
	Writer    io.Writer
	ErrWriter io.Writer
	JSON      bool
	Color     bool
}

// NewFormatter creates a new output formatter.
func NewFormatter(jsonMode, colorMode bool) *Formatter {
	return &Formatter{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		JSON:      jsonMode,
		Color:     colorMode,
	}
}

// Printf prints formatted text to stdout.
func (f *Formatter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(f.Writer, format, args...)
}

// Println prints a line to stdout.
func (f *Formatter) Println(args ...interface{}) {
	fmt.Fprintln(f.Writer, args...)
}

// Errorf prints a formatted error message to stderr.
func (f *Formatter) Errorf(format string, args ...interface{}) {
	if f.Color {
		c := color.New(color.FgRed)
		c.Fprintf(f.ErrWriter, format, args...)
	} else {
		fmt.Fprintf(f.ErrWriter, format, args...)
	}
}

// PrintJSON outputs a value as JSON.
func (f *Formatter) PrintJSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var typeColors = map[string][]color.Attribute{
	"updated": {color.FgYellow},
	"added":   {color.FgGreen},
	"renamed": {color.FgCyan},
	"deleted": {color.FgRed},
	"batch":   {color.FgMagenta, color.Bold},
}

// FormatType formats an event type label with its color.
func (f *Formatter) FormatType(typ string) string {
	label := fmt.Sprintf("%-8s", strings.ToUpper(typ))
	if attrs, ok := typeColors[typ]; ok && f.Color {
		return color.New(attrs...).Sprint(label)
	}
	return label
}

// FormatActor formats the user@session pair.
func (f *Formatter) FormatActor(user, session string) string {
	actor := user + "@" + session
	if f.Color {
		return color.New(color.Faint).Sprint(actor)
	}
	return actor
}

// --- events ---

// PrintEvent prints one event envelope. In JSON mode the envelope is written as a
// single line so the output can be piped.
func (f *Formatter) PrintEvent(env sink.Envelope) error {
	if f.JSON {
		data, err := json.Marshal(env)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(f.Writer, string(data))
		return err
	}

	ts := time.Now()
	if env.Time != nil {
		ts = *env.Time
	}
	var subject string
	switch env.Type {
	case "renamed":
		subject = env.Path + " -> " + env.Destination
	case "batch":
		count := 0
		for _, pc := range env.Changes {
			count += len(pc.Changes)
		}
		subject = fmt.Sprintf("%d paths, %d changes", len(env.Changes), count)
	default:
		subject = env.Path
	}

	line := fmt.Sprintf("%s %s %s  %s", ts.Local().Format("15:04:05"), f.FormatType(env.Type), subject,
		f.FormatActor(env.User, env.SessionID))
	if env.Message != "" {
		line += fmt.Sprintf("  %q", env.Message)
	}
	fmt.Fprintln(f.Writer, line)

	for _, pc := range env.Changes {
		names := make([]string, 0, len(pc.Changes))
		for _, c := range pc.Changes {
			name := c.Type
			if c.Destination != "" {
				name += " -> " + c.Destination
			}
			names = append(names, name)
		}
		fmt.Fprintf(f.Writer, "         %s  %s\n", pc.Path, strings.Join(names, ", "))
	}
	return nil
}

// --- watches ---

// WatchInfo describes one active watch for listing.
type WatchInfo struct {
	Root    string `json:"root"`
	Dirs    int    `json:"dirs"`
	Started string `json:"started"`
}

// PrintWatches prints the active watches sorted by root.
func (f *Formatter) PrintWatches(watches []WatchInfo) {
	sort.Slice(watches, func(i, j int) bool {
		return watches[i].Root < watches[j].Root
	})

	if f.JSON {
		if watches == nil {
			watches = []WatchInfo{}
		}
		f.PrintJSON(watches)
		return
	}

	if len(watches) == 0 {
		fmt.Fprintln(f.Writer, "(no watches)")
		return
	}
	for _, w := range watches {
		root := w.Root
		if f.Color {
			root = color.New(color.FgBlue, color.Bold).Sprint(root)
		}
		fmt.Fprintf(f.Writer, "%s  %d dirs  since %s\n", root, w.Dirs, w.Started)
	}
}

// --- key/value listings ---

// PrintFields prints name/value pairs aligned on the name column, in the given order.
func (f *Formatter) PrintFields(names []string, values map[string]interface{}) {
	if f.JSON {
		f.PrintJSON(values)
		return
	}
	width := 0
	for _, n := range names {
		if len(n) > width {
			width = len(n)
		}
	}
	for _, n := range names {
		fmt.Fprintf(f.Writer, "%*s: %v\n", width, n, values[n])
	}
}

// PrintList prints one item per line, or a JSON array.
func (f *Formatter) PrintList(items []string, empty string) {
	if f.JSON {
		if items == nil {
			items = []string{}
		}
		f.PrintJSON(items)
		return
	}
	if len(items) == 0 {
		fmt.Fprintln(f.Writer, empty)
		return
	}
	for _, item := range items {
		fmt.Fprintln(f.Writer, item)
	}
}
