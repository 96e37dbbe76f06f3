package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rowantrollope/redis-fs-events/internal/config"
	"github.com/rowantrollope/redis-fs-events/internal/output"
	"github.com/rowantrollope/redis-fs-events/internal/service"
	"github.com/rowantrollope/redis-fs-events/internal/sink"
	"github.com/rowantrollope/redis-fs-events/internal/source"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

type testEnv struct {
	router *Router
	out    *bytes.Buffer
	rec    *watch.Recorder
	rdb    *redis.Client
	queue  *source.Queue
}

func newTestEnv(t *testing.T, withQueue bool) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := config.DefaultConfig()
	cfg.Volume = "test"
	cfg.User = "tester"
	cfg.Message = ""

	var buf bytes.Buffer
	f := output.NewFormatter(false, false)
	f.Writer = &buf
	f.ErrWriter = &buf

	var queue *source.Queue
	if withQueue {
		queue = source.NewQueue(rdb, cfg.Volume, nil)
	}
	rec := &watch.Recorder{}
	svc := service.New(rec, queue, service.Options{Window: 20 * time.Millisecond})
	t.Cleanup(func() { svc.Close() })

	return &testEnv{
		router: NewRouter(svc, rdb, cfg, f, "sess-1"),
		out:    &buf,
		rec:    rec,
		rdb:    rdb,
		queue:  queue,
	}
}

func (e *testEnv) exec(t *testing.T, line string) {
	t.Helper()
	if err := e.router.Execute(context.Background(), line); err != nil {
		t.Fatalf("%s: %v", line, err)
	}
}

func TestExecuteUnknownAndEmpty(t *testing.T) {
	env := newTestEnv(t, false)
	if err := env.router.Execute(context.Background(), "   "); err != nil {
		t.Errorf("empty line: %v", err)
	}
	if err := env.router.Execute(context.Background(), "ls /"); err == nil {
		t.Error("expected error for unknown command")
	}
	if !env.router.IsBuiltin("WATCH") {
		t.Error("IsBuiltin is case sensitive")
	}
	names := env.router.CommandNames()
	if len(names) == 0 || names[0] != "clear" {
		t.Errorf("CommandNames = %v", names)
	}
}

func TestNotifyQueues(t *testing.T) {
	env := newTestEnv(t, true)
	env.exec(t, `notify rename /a b -m "tidy up"`)
	env.exec(t, `notify delete /c --user other --session s-2`)

	batch, err := env.queue.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	want := watch.Batch{
		{Kind: watch.KindRename, Context: watch.Context{OldPath: "/a", Path: "/b", Message: "tidy up", User: "tester", SessionID: "sess-1"}},
		{Kind: watch.KindDelete, Context: watch.Context{OldPath: "/c", User: "other", SessionID: "s-2"}},
	}
	if len(batch) != len(want) {
		t.Fatalf("queued %d, want %d", len(batch), len(want))
	}
	for i := range want {
		if batch[i] != want[i] {
			t.Errorf("queued[%d] = %+v, want %+v", i, batch[i], want[i])
		}
	}
}

func TestNotifyWithoutQueue(t *testing.T) {
	env := newTestEnv(t, false)
	env.exec(t, "notify create docs/new.md")

	calls := env.rec.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	ev, ok := calls[0].Event.(watch.ResourceAddedEvent)
	if !ok || ev.Path != "/docs/new.md" || ev.Session.User != "tester" {
		t.Errorf("event = %+v", calls[0].Event)
	}
}

func TestNotifyErrors(t *testing.T) {
	env := newTestEnv(t, true)
	for _, line := range []string{
		"notify",
		"notify modify",
		"notify chmod /a",
		"notify rename /a",
	} {
		if err := env.router.Execute(context.Background(), line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
	err := env.router.Execute(context.Background(), "notify chmod /a")
	if !errors.Is(err, watch.ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestPolicyCommand(t *testing.T) {
	env := newTestEnv(t, false)
	env.exec(t, "policy")
	if strings.TrimSpace(env.out.String()) != "batch" {
		t.Errorf("default policy output = %q", env.out.String())
	}

	env.exec(t, "policy first")
	if got := env.router.Service.Executor().RepeatedPolicy(); got != watch.RepeatedFirst {
		t.Errorf("policy = %v", got)
	}
	if err := env.router.Execute(context.Background(), "policy sometimes"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestFilterCommand(t *testing.T) {
	env := newTestEnv(t, false)
	env.exec(t, "filter list")
	if !strings.Contains(env.out.String(), "(no filters)") {
		t.Errorf("empty list = %q", env.out.String())
	}

	env.exec(t, "filter add *.tmp build/")
	env.out.Reset()
	env.exec(t, "filter list")
	if out := env.out.String(); !strings.Contains(out, "* *.tmp") || !strings.Contains(out, "* build/") {
		t.Errorf("list = %q", out)
	}

	env.exec(t, "notify create /x.tmp")
	if env.rec.Len() != 0 {
		t.Error("filtered notification dispatched")
	}

	env.exec(t, "filter clear")
	env.exec(t, "notify create /x.tmp")
	if env.rec.Len() != 1 {
		t.Error("cleared filter still drops")
	}

	for _, line := range []string{"filter", "filter add", "filter nope", "filter add [oops"} {
		if err := env.router.Execute(context.Background(), line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
}

func TestStatsCommand(t *testing.T) {
	env := newTestEnv(t, true)
	env.exec(t, "notify modify /a")
	env.exec(t, "stats")
	out := env.out.String()
	for _, want := range []string{"cycles: 0", "queued: 1", "policy: batch"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
}

func TestWatchListUnwatch(t *testing.T) {
	env := newTestEnv(t, false)
	dir := t.TempDir()

	env.exec(t, "watch "+dir)
	if !strings.Contains(env.out.String(), "watching "+dir) {
		t.Errorf("watch output = %q", env.out.String())
	}
	if err := env.router.Execute(context.Background(), "watch "+dir); !errors.Is(err, service.ErrAlreadyWatching) {
		t.Errorf("second watch err = %v", err)
	}

	env.out.Reset()
	env.exec(t, "list")
	if !strings.Contains(env.out.String(), dir) {
		t.Errorf("list = %q", env.out.String())
	}

	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for env.rec.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if env.rec.Len() == 0 {
		t.Fatal("no event for written file")
	}

	env.exec(t, "unwatch "+dir)
	env.out.Reset()
	env.exec(t, "list")
	if !strings.Contains(env.out.String(), "(no watches)") {
		t.Errorf("list after unwatch = %q", env.out.String())
	}
	if err := env.router.Execute(context.Background(), "unwatch "+dir); !errors.Is(err, service.ErrNotWatching) {
		t.Errorf("unwatch err = %v", err)
	}
}

func TestUnwatchAll(t *testing.T) {
	env := newTestEnv(t, false)
	env.exec(t, "watch "+t.TempDir()+" "+t.TempDir())
	if n := len(env.router.Service.Watches()); n != 2 {
		t.Fatalf("watches = %d", n)
	}
	env.exec(t, "unwatch --all")
	if n := len(env.router.Service.Watches()); n != 0 {
		t.Errorf("watches after --all = %d", n)
	}
}

func TestWatchRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t, false)
	good := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing")

	if err := env.router.Execute(context.Background(), "watch "+good+" "+missing); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if n := len(env.router.Service.Watches()); n != 0 {
		t.Errorf("watches after failed watch = %d", n)
	}

	err := env.router.Execute(context.Background(), "watch "+good+" "+good)
	if !errors.Is(err, service.ErrAlreadyWatching) {
		t.Errorf("duplicate watch err = %v", err)
	}
	if n := len(env.router.Service.Watches()); n != 0 {
		t.Errorf("watches after duplicate = %d", n)
	}

	other := t.TempDir()
	env.exec(t, "watch "+other)
	if err := env.router.Execute(context.Background(), "watch "+good+" "+missing); err == nil {
		t.Fatal("expected error for missing directory")
	}
	ws := env.router.Service.Watches()
	if len(ws) != 1 || ws[0].Root != other {
		t.Errorf("earlier watch lost: %+v", ws)
	}
}

func TestRunFailedWatchClosesService(t *testing.T) {
	env := newTestEnv(t, true)
	missing := filepath.Join(t.TempDir(), "missing")

	if err := env.router.Execute(context.Background(), "run "+t.TempDir()+" "+missing); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if n := len(env.router.Service.Watches()); n != 0 {
		t.Errorf("watches after failed run = %d", n)
	}
	if env.router.State.Running {
		t.Error("router still marked running")
	}
}

func TestRunNeedsSomething(t *testing.T) {
	env := newTestEnv(t, false)
	if err := env.router.Execute(context.Background(), "run"); err == nil {
		t.Error("expected error with no roots and no queue")
	}

	env.router.State.Running = true
	if err := env.router.Execute(context.Background(), "run "+t.TempDir()); err == nil {
		t.Error("expected error while already running")
	}
}

func TestRunUntilCancelled(t *testing.T) {
	env := newTestEnv(t, true)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.router.Execute(ctx, "run "+dir) }()

	n := watch.Notification{Kind: watch.KindDelete, Context: watch.Context{OldPath: "/gone"}}
	if err := env.queue.Push(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for env.rec.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if env.rec.Len() == 0 {
		t.Fatal("queued notification not processed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop")
	}
	if len(env.router.Service.Watches()) != 0 {
		t.Error("run left watches open")
	}
}

func TestTail(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	pub := sink.NewPublisher(env.rdb, "test")

	done := make(chan error, 1)
	go func() { done <- env.router.Execute(ctx, "tail -n 1") }()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		subs, err := env.rdb.PubSubNumSub(ctx, pub.Channel()).Result()
		if err == nil && subs[pub.Channel()] > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := pub.OnResourceUpdated(ctx, watch.ResourceUpdatedEvent{
		Path:    "/tailed.md",
		Session: watch.SessionInfo{ID: "s", User: "u"},
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("tail: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tail did not return")
	}
	if out := env.out.String(); !strings.Contains(out, "UPDATED") || !strings.Contains(out, "/tailed.md") {
		t.Errorf("tail output = %q", out)
	}
}

func TestHelpCommand(t *testing.T) {
	env := newTestEnv(t, false)
	env.exec(t, "help")
	if out := env.out.String(); !strings.Contains(out, "watch dir...") || !strings.Contains(out, "fs:test:events") {
		t.Errorf("help = %q", out)
	}
	env.out.Reset()
	env.exec(t, "help nope")
	if !strings.Contains(env.out.String(), "No help available") {
		t.Errorf("help nope = %q", env.out.String())
	}
}
