package watch

// SystemIdentity stands in for the session and user when a notification carries none.
const SystemIdentity = "<system>"

// SessionInfo identifies who triggered a change.
type SessionInfo struct {
	ID   string `json:"session_id"`
	User string `json:"user"`
}

// ActorFor derives the attribution for a notification context. Missing values become
// SystemIdentity; nothing else is resolved or validated.
func ActorFor(ctx Context) SessionInfo {
	info := SessionInfo{ID: ctx.SessionID, User: ctx.User}
	if info.ID == "" {
		info.ID = SystemIdentity
	}
	if info.User == "" {
		info.User = SystemIdentity
	}
	return info
}

// IsSystem reports whether neither the session nor the user is known.
func (s SessionInfo) IsSystem() bool {
	return s.ID == SystemIdentity && s.User == SystemIdentity
}
