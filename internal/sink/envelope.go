// Package sink delivers resource events outside the process.
package sink

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

// Envelope is the JSON form of a resource event on the wire.
type Envelope struct {
	Type        string        `json:"type"`
	Path        string        `json:"path,omitempty"`
	Destination string        `json:"destination,omitempty"`
	Message     string        `json:"message,omitempty"`
	SessionID   string        `json:"session_id"`
	User        string        `json:"user"`
	Changes     []PathChanges `json:"changes,omitempty"`
	Time        *time.Time    `json:"time,omitempty"`
}

// PathChanges lists the changes of one path inside a batch envelope.
type PathChanges struct {
	Path    string   `json:"path"`
	Changes []Change `json:"changes"`
}

// Change is one resource change inside a batch envelope.
type Change struct {
	Type        string `json:"type"`
	Destination string `json:"destination,omitempty"`
	Message     string `json:"message,omitempty"`
}

// NewEnvelope converts a domain event to its wire form.
func NewEnvelope(event watch.ResourceEvent) Envelope {
	session := event.Actor()
	env := Envelope{
		Type:      watch.EventName(event),
		SessionID: session.ID,
		User:      session.User,
	}
	switch e := event.(type) {
	case watch.ResourceUpdatedEvent:
		env.Path, env.Message = e.Path, e.Message
	case watch.ResourceAddedEvent:
		env.Path, env.Message = e.Path, e.Message
	case watch.ResourceRenamedEvent:
		env.Path, env.Destination, env.Message = e.Path, e.Destination, e.Message
	case watch.ResourceDeletedEvent:
		env.Path, env.Message = e.Path, e.Message
	case watch.ResourceBatchChangesEvent:
		env.Message = e.Message
		for _, p := range e.Changes.Paths() {
			pc := PathChanges{Path: p}
			for _, c := range e.Changes.Changes(p) {
				change := Change{Type: watch.ChangeName(c), Message: watch.ChangeMessage(c)}
				if r, ok := c.(watch.ResourceRenamed); ok {
					change.Destination = r.Destination
				}
				pc.Changes = append(pc.Changes, change)
			}
			env.Changes = append(env.Changes, pc)
		}
	}
	return env
}

// Event converts the envelope back to a domain event.
func (e Envelope) Event() (watch.ResourceEvent, error) {
	session := watch.SessionInfo{ID: e.SessionID, User: e.User}
	switch e.Type {
	case "updated":
		return watch.ResourceUpdatedEvent{Path: e.Path, Message: e.Message, Session: session}, nil
	case "added":
		return watch.ResourceAddedEvent{Path: e.Path, Message: e.Message, Session: session}, nil
	case "renamed":
		return watch.ResourceRenamedEvent{Path: e.Path, Destination: e.Destination, Message: e.Message, Session: session}, nil
	case "deleted":
		return watch.ResourceDeletedEvent{Path: e.Path, Message: e.Message, Session: session}, nil
	case "batch":
		var entries []watch.PathChange
		for _, pc := range e.Changes {
			for _, c := range pc.Changes {
				change, err := c.resourceChange()
				if err != nil {
					return nil, err
				}
				entries = append(entries, watch.PathChange{Path: pc.Path, Change: change})
			}
		}
		group := watch.NewChangeGroup(entries...)
		if group.Len() == 0 {
			return nil, fmt.Errorf("decode event: batch without changes")
		}
		return watch.ResourceBatchChangesEvent{Changes: group, Message: e.Message, Session: session}, nil
	}
	return nil, fmt.Errorf("decode event: unknown type %q", e.Type)
}

func (c Change) resourceChange() (watch.ResourceChange, error) {
	switch c.Type {
	case "updated":
		return watch.ResourceUpdated{Message: c.Message}, nil
	case "added":
		return watch.ResourceAdded{Message: c.Message}, nil
	case "renamed":
		return watch.ResourceRenamed{Destination: c.Destination, Message: c.Message}, nil
	case "deleted":
		return watch.ResourceDeleted{Message: c.Message}, nil
	}
	return nil, fmt.Errorf("decode event: unknown change type %q", c.Type)
}

// Decode parses a JSON envelope.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}
	return env, nil
}

// Encode returns the JSON envelope of event.
func Encode(event watch.ResourceEvent) ([]byte, error) {
	data, err := json.Marshal(NewEnvelope(event))
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}
