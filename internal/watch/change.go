package watch

// ResourceChange is the semantic classification of one notification. The set of
// implementations is closed: ResourceUpdated, ResourceAdded, ResourceRenamed and
// ResourceDeleted.
type ResourceChange interface {
	resourceChange()
}

// ResourceUpdated records that an existing resource was modified.
type ResourceUpdated struct {
	Message string
}

// ResourceAdded records that a resource was created.
type ResourceAdded struct {
	Message string
}

// ResourceRenamed records that a resource moved to Destination.
type ResourceRenamed struct {
	Destination string
	Message     string
}

// ResourceDeleted records that a resource was removed.
type ResourceDeleted struct {
	Message string
}

func (ResourceUpdated) resourceChange() {}
func (ResourceAdded) resourceChange()   {}
func (ResourceRenamed) resourceChange() {}
func (ResourceDeleted) resourceChange() {}

// ChangeName returns the lowercase name of the change variant.
func ChangeName(change ResourceChange) string {
	switch change.(type) {
	case ResourceUpdated:
		return "updated"
	case ResourceAdded:
		return "added"
	case ResourceRenamed:
		return "renamed"
	case ResourceDeleted:
		return "deleted"
	}
	return "unknown"
}

// ChangeMessage returns the message carried by change.
func ChangeMessage(change ResourceChange) string {
	switch c := change.(type) {
	case ResourceUpdated:
		return c.Message
	case ResourceAdded:
		return c.Message
	case ResourceRenamed:
		return c.Message
	case ResourceDeleted:
		return c.Message
	}
	return ""
}

// ChangeGroup maps affected paths to the changes seen for them during one poll cycle.
// Paths keep the order in which they were first seen and each path keeps its changes
// in arrival order. Accessors return copies.
type ChangeGroup struct {
	paths   []string
	changes map[string][]ResourceChange
}

// PathChange is one change and the path it applies to.
type PathChange struct {
	Path   string
	Change ResourceChange
}

// NewChangeGroup builds a group from entries in order. The group cannot be changed
// afterwards, so an event holding it stays the same for every observer.
func NewChangeGroup(entries ...PathChange) *ChangeGroup {
	g := &ChangeGroup{
		changes: make(map[string][]ResourceChange),
	}
	for _, e := range entries {
		g.add(e.Path, e.Change)
	}
	return g
}

func (g *ChangeGroup) add(path string, change ResourceChange) {
	if _, ok := g.changes[path]; !ok {
		g.paths = append(g.paths, path)
	}
	g.changes[path] = append(g.changes[path], change)
}

// Len returns the number of distinct paths.
func (g *ChangeGroup) Len() int {
	if g == nil {
		return 0
	}
	return len(g.paths)
}

// Count returns the total number of changes across all paths.
func (g *ChangeGroup) Count() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, changes := range g.changes {
		n += len(changes)
	}
	return n
}

// Paths returns the affected paths in first-seen order.
func (g *ChangeGroup) Paths() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.paths))
	copy(out, g.paths)
	return out
}

// Changes returns the changes recorded for path in arrival order.
func (g *ChangeGroup) Changes(path string) []ResourceChange {
	if g == nil {
		return nil
	}
	changes := g.changes[path]
	out := make([]ResourceChange, len(changes))
	copy(out, changes)
	return out
}

// Single returns the only path and change when the group holds exactly one path with
// exactly one change.
func (g *ChangeGroup) Single() (string, ResourceChange, bool) {
	if g.Len() != 1 {
		return "", nil, false
	}
	path := g.paths[0]
	changes := g.changes[path]
	if len(changes) != 1 {
		return "", nil, false
	}
	return path, changes[0], true
}
