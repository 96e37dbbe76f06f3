package cli

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rowantrollope/redis-fs-events/internal/cmd"
	"github.com/rowantrollope/redis-fs-events/internal/config"
	"github.com/rowantrollope/redis-fs-events/internal/output"
	"github.com/rowantrollope/redis-fs-events/internal/service"
)

func TestBuildPrompt(t *testing.T) {
	if got := BuildPrompt("main", 2, false); got != "redis-fs-events:main:2w> " {
		t.Errorf("BuildPrompt = %q", got)
	}
	if got := BuildPrompt("docs", 0, true); got != "\033[32mredis-fs-events:docs:0w>\033[0m " {
		t.Errorf("colored BuildPrompt = %q", got)
	}
}

func newTestCompleter(t *testing.T) *Completer {
	t.Helper()
	svc := service.New(nil, nil, service.Options{})
	t.Cleanup(func() { svc.Close() })
	router := cmd.NewRouter(svc, nil, config.DefaultConfig(), output.NewFormatter(false, false), "s")
	return NewCompleter(router)
}

func doComplete(c *Completer, line string) ([]string, int) {
	got, n := c.Do([]rune(line), len([]rune(line)))
	var out []string
	for _, r := range got {
		out = append(out, string(r))
	}
	return out, n
}

func TestCompleterWords(t *testing.T) {
	c := newTestCompleter(t)
	tests := []struct {
		line  string
		want  []string
		wantN int
	}{
		{"wa", []string{"tch "}, 2},
		{"un", []string{"watch "}, 2},
		{"filter ", []string{"add ", "clear ", "list "}, 0},
		{"policy f", []string{"irst "}, 1},
		{"notify re", []string{"name "}, 2},
		{"help sta", []string{"ts "}, 3},
		{"tail -", nil, 0},
		{"stats x", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, n := doComplete(c, tt.line)
			if !reflect.DeepEqual(got, tt.want) || n != tt.wantN {
				t.Errorf("Do(%q) = %q, %d; want %q, %d", tt.line, got, n, tt.want, tt.wantN)
			}
		})
	}
}

func TestCompleterDirs(t *testing.T) {
	c := newTestCompleter(t)
	dir := t.TempDir()
	for _, d := range []string{"alpha", "apple", "beta", ".hidden"} {
		if err := os.Mkdir(filepath.Join(dir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "afile"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	line := "watch " + dir + "/a"
	got, n := doComplete(c, line)
	want := []string{"lpha/", "pple/"}
	if !reflect.DeepEqual(got, want) || n != len(dir+"/a") {
		t.Errorf("Do(%q) = %q, %d", line, got, n)
	}

	got, _ = doComplete(c, "watch "+dir+"/")
	if len(got) != 3 {
		t.Errorf("hidden dirs should be skipped: %q", got)
	}
}

func TestCompleterUnwatchRoots(t *testing.T) {
	c := newTestCompleter(t)
	dir := t.TempDir()
	if _, err := c.router.Service.Watch(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	got, _ := doComplete(c, "unwatch ")
	if len(got) != 1 || got[0] != dir+" " {
		t.Errorf("unwatch completion = %q", got)
	}
}
