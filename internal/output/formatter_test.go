package output

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rowantrollope/redis-fs-events/internal/sink"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

func newTestFormatter(jsonMode bool) (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	f := NewFormatter(jsonMode, false)
	f.Writer = &buf
	f.ErrWriter = &buf
	return f, &buf
}

func TestPrintEventText(t *testing.T) {
	ts := time.Date(2026, 3, 4, 10, 11, 12, 0, time.Local)
	tests := []struct {
		name string
		env  sink.Envelope
		want []string
	}{
		{
			name: "updated",
			env:  sink.Envelope{Type: "updated", Path: "/a.txt", User: "alice", SessionID: "s-1", Message: "fix", Time: &ts},
			want: []string{"10:11:12", "UPDATED", "/a.txt", "alice@s-1", `"fix"`},
		},
		{
			name: "renamed",
			env:  sink.Envelope{Type: "renamed", Path: "/a", Destination: "/b", User: "<system>", SessionID: "<system>", Time: &ts},
			want: []string{"RENAMED", "/a -> /b", "<system>@<system>"},
		},
		{
			name: "batch",
			env: sink.Envelope{Type: "batch", User: "u", SessionID: "s", Time: &ts, Changes: []sink.PathChanges{
				{Path: "/x", Changes: []sink.Change{{Type: "updated"}, {Type: "deleted"}}},
				{Path: "/y", Changes: []sink.Change{{Type: "renamed", Destination: "/z"}}},
			}},
			want: []string{"BATCH", "2 paths, 3 changes", "/x  updated, deleted", "/y  renamed -> /z"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, buf := newTestFormatter(false)
			if err := f.PrintEvent(tt.env); err != nil {
				t.Fatalf("PrintEvent: %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
		})
	}
}

func TestPrintEventJSON(t *testing.T) {
	f, buf := newTestFormatter(true)
	if err := f.PrintEvent(sink.Envelope{Type: "added", Path: "/n", User: "u", SessionID: "s"}); err != nil {
		t.Fatalf("PrintEvent: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Errorf("want one line, got %q", out)
	}
	env, err := sink.Decode([]byte(out))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != "added" || env.Path != "/n" {
		t.Errorf("decoded = %+v", env)
	}
}

func TestPrintWatches(t *testing.T) {
	f, buf := newTestFormatter(false)
	f.PrintWatches(nil)
	if !strings.Contains(buf.String(), "(no watches)") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	f.PrintWatches([]WatchInfo{{Root: "/b", Dirs: 1}, {Root: "/a", Dirs: 3}})
	out := buf.String()
	if strings.Index(out, "/a") > strings.Index(out, "/b") {
		t.Errorf("watches not sorted: %q", out)
	}

	f, buf = newTestFormatter(true)
	f.PrintWatches(nil)
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("json empty = %q", buf.String())
	}
}

func TestPrintFields(t *testing.T) {
	f, buf := newTestFormatter(false)
	f.PrintFields([]string{"cycles", "errors"}, map[string]interface{}{"cycles": 4, "errors": 0})
	want := "cycles: 4\nerrors: 0\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestConsole(t *testing.T) {
	f, buf := newTestFormatter(false)
	c := Console{Formatter: f}
	err := c.OnResourceDeleted(context.Background(), watch.ResourceDeletedEvent{
		Path:    "/gone",
		Session: watch.ActorFor(watch.Context{User: "dave"}),
	})
	if err != nil {
		t.Fatalf("OnResourceDeleted: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "DELETED") || !strings.Contains(out, "dave@<system>") {
		t.Errorf("output = %q", out)
	}
}

func TestConsoleJSON(t *testing.T) {
	f, buf := newTestFormatter(true)
	fixed := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	c := Console{Formatter: f, now: func() time.Time { return fixed }}

	err := c.OnResourceAdded(context.Background(), watch.ResourceAddedEvent{
		Path:    "/a",
		Session: watch.ActorFor(watch.Context{}),
	})
	if err != nil {
		t.Fatalf("OnResourceAdded: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "0001-01-01") {
		t.Errorf("zero time printed: %s", out)
	}
	env, err := sink.Decode([]byte(out))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Time == nil || !env.Time.Equal(fixed) {
		t.Errorf("time = %v, want %v", env.Time, fixed)
	}
	if env.Type != "added" || env.User != watch.SystemIdentity {
		t.Errorf("envelope = %+v", env)
	}
}
