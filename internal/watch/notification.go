package watch

// Context is the metadata a watcher attaches to a notification. Empty strings mean
// the value is absent.
type Context struct {
	// OldPath is the path before the change. Required for MODIFY, RENAME and DELETE.
	OldPath string `json:"old_path,omitempty"`
	// Path is the path after the change. Required for CREATE and RENAME.
	Path      string `json:"path,omitempty"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	User      string `json:"user,omitempty"`
}

// Notification is one raw change record drained from a watch key.
type Notification struct {
	Kind    Kind    `json:"kind"`
	Context Context `json:"context"`
}

// Key is a watch key whose pending notifications are drained once per poll cycle.
type Key interface {
	PollEvents() []Notification
}

// Batch is a Key backed by an in-memory slice.
type Batch []Notification

// PollEvents returns the notifications in arrival order.
func (b Batch) PollEvents() []Notification {
	return b
}

// Filter decides which notifications to discard. Returning true drops the notification.
type Filter func(Notification) bool

// Drop reports whether n should be discarded. A nil Filter keeps everything.
func (f Filter) Drop(n Notification) bool {
	if f == nil {
		return false
	}
	return f(n)
}

// AnyOf drops a notification when at least one of filters drops it.
func AnyOf(filters ...Filter) Filter {
	return func(n Notification) bool {
		for _, f := range filters {
			if f.Drop(n) {
				return true
			}
		}
		return false
	}
}

// KeepAll is a Filter that never drops.
func KeepAll(Notification) bool {
	return false
}
