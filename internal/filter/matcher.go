// Package filter builds watch.Filter predicates from ignore patterns.
package filter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/rowantrollope/redis-fs-events/internal/fs"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

// Matcher holds compiled ignore patterns. Patterns are matched against the logical path
// (e.g. /docs/a.md), against its base name and against every parent directory, so
// "*.swp", "/build/**" and "node_modules/" all behave as expected.
type Matcher struct {
	mu       sync.RWMutex
	patterns []string
	globs    []glob.Glob
}

// NewMatcher compiles patterns into a Matcher.
func NewMatcher(patterns ...string) (*Matcher, error) {
	m := &Matcher{}
	if err := m.Add(patterns...); err != nil {
		return nil, err
	}
	return m, nil
}

// Add compiles and appends patterns. Blank lines and lines starting with # are skipped.
// Nothing is added if any pattern fails to compile.
func (m *Matcher) Add(patterns ...string) error {
	var (
		sources []string
		globs   []glob.Glob
	)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
		sources = append(sources, pattern)
		globs = append(globs, g)
	}

	m.mu.Lock()
	m.patterns = append(m.patterns, sources...)
	m.globs = append(m.globs, globs...)
	m.mu.Unlock()
	return nil
}

// Clear removes every pattern.
func (m *Matcher) Clear() {
	m.mu.Lock()
	m.patterns = nil
	m.globs = nil
	m.mu.Unlock()
}

// Patterns returns the source patterns in the order they were added.
func (m *Matcher) Patterns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// Len returns the number of patterns.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.globs)
}

// Match reports whether the logical path p is ignored.
func (m *Matcher) Match(p string) bool {
	return m.match(p, false)
}

// MatchDir is Match for a path known to be a directory, so patterns with a trailing
// slash apply to p itself.
func (m *Matcher) MatchDir(p string) bool {
	return m.match(p, true)
}

func (m *Matcher) match(p string, dir bool) bool {
	if fs.IsRoot(p) {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.globs) == 0 {
		return false
	}

	base := fs.BaseName(p)
	candidates := []string{p, base}
	trimmed := strings.TrimPrefix(p, "/")
	if trimmed != p {
		candidates = append(candidates, trimmed)
	}
	if dir {
		candidates = append(candidates, p+"/", base+"/", trimmed+"/")
	}
	for d := fs.ParentPath(p); !fs.IsRoot(d); d = fs.ParentPath(d) {
		name := fs.BaseName(d)
		candidates = append(candidates, d+"/", strings.TrimPrefix(d, "/")+"/", name, name+"/")
	}

	for _, g := range m.globs {
		for _, c := range candidates {
			if g.Match(c) {
				return true
			}
		}
	}
	return false
}

// Filter returns a watch.Filter that drops notifications touching an ignored path.
// A rename is dropped only when both its source and destination are ignored.
func (m *Matcher) Filter() watch.Filter {
	return func(n watch.Notification) bool {
		ctx := n.Context
		switch n.Kind {
		case watch.KindCreate:
			return m.Match(ctx.Path)
		case watch.KindRename:
			return m.Match(ctx.OldPath) && (ctx.Path == "" || m.Match(ctx.Path))
		default:
			if ctx.OldPath != "" {
				return m.Match(ctx.OldPath)
			}
			return m.Match(ctx.Path)
		}
	}
}
