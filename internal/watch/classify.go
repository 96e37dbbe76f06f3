package watch

// Classify maps a notification to the path it affects and the change it represents.
// It returns ok=false for unrecognized kinds and when the path the kind depends on is
// missing; neither case is an error.
func Classify(n Notification) (path string, change ResourceChange, ok bool) {
	ctx := n.Context
	switch n.Kind {
	case KindModify:
		path, change = ctx.OldPath, ResourceUpdated{Message: ctx.Message}
	case KindCreate:
		path, change = ctx.Path, ResourceAdded{Message: ctx.Message}
	case KindRename:
		path, change = ctx.OldPath, ResourceRenamed{Destination: ctx.Path, Message: ctx.Message}
	case KindDelete:
		path, change = ctx.OldPath, ResourceDeleted{Message: ctx.Message}
	default:
		return "", nil, false
	}
	if path == "" {
		return "", nil, false
	}
	return path, change, true
}

// BuildEvent maps a notification directly to a typed domain event, attributing it to
// the notification's own session. Presence rules match Classify.
func BuildEvent(n Notification) (ResourceEvent, bool) {
	path, change, ok := Classify(n)
	if !ok {
		return nil, false
	}
	return ToEvent(path, change, n.Context), true
}

// ToEvent builds the typed event for a single change. The message and actor come from
// ctx, which need not be the context the change was classified from.
func ToEvent(path string, change ResourceChange, ctx Context) ResourceEvent {
	session := ActorFor(ctx)
	switch c := change.(type) {
	case ResourceUpdated:
		return ResourceUpdatedEvent{Path: path, Message: ctx.Message, Session: session}
	case ResourceAdded:
		return ResourceAddedEvent{Path: path, Message: ctx.Message, Session: session}
	case ResourceRenamed:
		return ResourceRenamedEvent{Path: path, Destination: c.Destination, Message: ctx.Message, Session: session}
	case ResourceDeleted:
		return ResourceDeletedEvent{Path: path, Message: ctx.Message, Session: session}
	}
	return nil
}

// NewBatchEvent wraps group in a batch event whose message and actor come from ctx.
func NewBatchEvent(group *ChangeGroup, ctx Context) ResourceBatchChangesEvent {
	return ResourceBatchChangesEvent{
		Changes: group,
		Message: ctx.Message,
		Session: ActorFor(ctx),
	}
}
