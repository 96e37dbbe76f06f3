package watch

// ResourceEvent is a domain event handed to a ResourceObserver. Implementations are
// ResourceUpdatedEvent, ResourceAddedEvent, ResourceRenamedEvent, ResourceDeletedEvent
// and ResourceBatchChangesEvent.
type ResourceEvent interface {
	Actor() SessionInfo
	resourceEvent()
}

// ResourceUpdatedEvent reports a modified resource.
type ResourceUpdatedEvent struct {
	Path    string
	Message string
	Session SessionInfo
}

// ResourceAddedEvent reports a created resource.
type ResourceAddedEvent struct {
	Path    string
	Message string
	Session SessionInfo
}

// ResourceRenamedEvent reports a resource moved from Path to Destination.
type ResourceRenamedEvent struct {
	Path        string
	Destination string
	Message     string
	Session     SessionInfo
}

// ResourceDeletedEvent reports a removed resource.
type ResourceDeletedEvent struct {
	Path    string
	Message string
	Session SessionInfo
}

// ResourceBatchChangesEvent reports changes to several paths in one poll cycle.
type ResourceBatchChangesEvent struct {
	Changes *ChangeGroup
	Message string
	Session SessionInfo
}

func (e ResourceUpdatedEvent) Actor() SessionInfo      { return e.Session }
func (e ResourceAddedEvent) Actor() SessionInfo        { return e.Session }
func (e ResourceRenamedEvent) Actor() SessionInfo      { return e.Session }
func (e ResourceDeletedEvent) Actor() SessionInfo      { return e.Session }
func (e ResourceBatchChangesEvent) Actor() SessionInfo { return e.Session }

func (ResourceUpdatedEvent) resourceEvent()      {}
func (ResourceAddedEvent) resourceEvent()        {}
func (ResourceRenamedEvent) resourceEvent()      {}
func (ResourceDeletedEvent) resourceEvent()      {}
func (ResourceBatchChangesEvent) resourceEvent() {}

// EventName returns the lowercase name of the event type.
func EventName(event ResourceEvent) string {
	switch event.(type) {
	case ResourceUpdatedEvent:
		return "updated"
	case ResourceAddedEvent:
		return "added"
	case ResourceRenamedEvent:
		return "renamed"
	case ResourceDeletedEvent:
		return "deleted"
	case ResourceBatchChangesEvent:
		return "batch"
	}
	return "unknown"
}
