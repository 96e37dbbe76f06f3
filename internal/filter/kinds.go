package filter

import "github.com/rowantrollope/redis-fs-events/internal/watch"

// Kinds returns a watch.Filter that drops every notification whose kind is not listed.
func Kinds(keep ...watch.Kind) watch.Filter {
	allowed := make(map[watch.Kind]bool, len(keep))
	for _, k := range keep {
		allowed[k] = true
	}
	return func(n watch.Notification) bool {
		return !allowed[n.Kind]
	}
}

// Sessions returns a watch.Filter that drops notifications triggered by the listed
// session ids, typically the process's own session to avoid echoing its writes.
func Sessions(ids ...string) watch.Filter {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			drop[id] = true
		}
	}
	return func(n watch.Notification) bool {
		return drop[n.Context.SessionID]
	}
}
