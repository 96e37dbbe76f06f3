package sink

import (
	"reflect"
	"strings"
	"testing"

	"github.com/rowantrollope/redis-fs-events/internal/watch"
)

func TestEnvelopeSingleEvents(t *testing.T) {
	alice := watch.SessionInfo{ID: "s-1", User: "alice"}
	tests := []struct {
		name  string
		event watch.ResourceEvent
		want  Envelope
	}{
		{
			name:  "updated",
			event: watch.ResourceUpdatedEvent{Path: "/a.txt", Message: "edit", Session: alice},
			want:  Envelope{Type: "updated", Path: "/a.txt", Message: "edit", SessionID: "s-1", User: "alice"},
		},
		{
			name:  "added",
			event: watch.ResourceAddedEvent{Path: "/b.txt", Session: alice},
			want:  Envelope{Type: "added", Path: "/b.txt", SessionID: "s-1", User: "alice"},
		},
		{
			name:  "renamed",
			event: watch.ResourceRenamedEvent{Path: "/a", Destination: "/b", Session: alice},
			want:  Envelope{Type: "renamed", Path: "/a", Destination: "/b", SessionID: "s-1", User: "alice"},
		},
		{
			name:  "deleted system",
			event: watch.ResourceDeletedEvent{Path: "/c", Session: watch.ActorFor(watch.Context{})},
			want:  Envelope{Type: "deleted", Path: "/c", SessionID: "<system>", User: "<system>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEnvelope(tt.event)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NewEnvelope = %+v, want %+v", got, tt.want)
			}
			back, err := got.Event()
			if err != nil {
				t.Fatalf("Event: %v", err)
			}
			if !reflect.DeepEqual(back, tt.event) {
				t.Errorf("Event = %+v, want %+v", back, tt.event)
			}
		})
	}
}

func TestEnvelopeBatch(t *testing.T) {
	group := watch.NewChangeGroup(
		watch.PathChange{Path: "/a", Change: watch.ResourceUpdated{}},
		watch.PathChange{Path: "/b", Change: watch.ResourceRenamed{Destination: "/c"}},
		watch.PathChange{Path: "/a", Change: watch.ResourceDeleted{}},
	)
	event := watch.ResourceBatchChangesEvent{
		Changes: group,
		Message: "sync",
		Session: watch.SessionInfo{ID: "s-2", User: "bob"},
	}

	data, err := Encode(event)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), `"type":"batch"`) {
		t.Errorf("encoded batch missing type: %s", data)
	}
	if strings.Contains(string(data), `"time"`) {
		t.Errorf("unstamped envelope carries a time: %s", data)
	}

	env, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(env.Changes) != 2 || env.Changes[0].Path != "/a" || len(env.Changes[0].Changes) != 2 {
		t.Fatalf("changes = %+v", env.Changes)
	}
	if env.Changes[1].Changes[0].Destination != "/c" {
		t.Errorf("rename destination = %q", env.Changes[1].Changes[0].Destination)
	}

	back, err := env.Event()
	if err != nil {
		t.Fatalf("Event: %v", err)
	}
	batch, ok := back.(watch.ResourceBatchChangesEvent)
	if !ok {
		t.Fatalf("Event type = %T", back)
	}
	if !reflect.DeepEqual(batch.Changes.Paths(), []string{"/a", "/b"}) {
		t.Errorf("paths = %v", batch.Changes.Paths())
	}
	if batch.Changes.Count() != 3 || batch.Message != "sync" || batch.Session.User != "bob" {
		t.Errorf("batch = %+v", batch)
	}
}

func TestEnvelopeDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"unknown type", `{"type":"moved"}`},
		{"empty batch", `{"type":"batch"}`},
		{"unknown change", `{"type":"batch","changes":[{"path":"/a","changes":[{"type":"chmod"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.data))
			if err == nil {
				_, err = env.Event()
			}
			if err == nil {
				t.Errorf("expected error for %s", tt.data)
			}
		})
	}
}
