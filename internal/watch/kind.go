package watch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by ParseKind for names it does not recognize.
var ErrUnknownKind = errors.New("unknown notification kind")

// Kind identifies the raw operation reported by a watcher.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindModify
	KindCreate
	KindRename
	KindDelete
	// KindOverflow marks notifications a watcher could not describe (lost events,
	// attribute-only changes). The classifier ignores it like any unrecognized kind.
	KindOverflow
)

var kindNames = map[Kind]string{
	KindUnknown:  "UNKNOWN",
	KindModify:   "ENTRY_MODIFY",
	KindCreate:   "ENTRY_CREATE",
	KindRename:   "ENTRY_RENAME",
	KindDelete:   "ENTRY_DELETE",
	KindOverflow: "OVERFLOW",
}

// String returns the watch-service name of the kind, e.g. ENTRY_MODIFY.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Recognized reports whether the classifier knows how to handle the kind.
func (k Kind) Recognized() bool {
	switch k {
	case KindModify, KindCreate, KindRename, KindDelete:
		return true
	}
	return false
}

// ParseKind accepts both the long (ENTRY_CREATE) and short (create) names, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "ENTRY_")
	switch name {
	case "MODIFY":
		return KindModify, nil
	case "CREATE":
		return KindCreate, nil
	case "RENAME":
		return KindRename, nil
	case "DELETE":
		return KindDelete, nil
	case "OVERFLOW":
		return KindOverflow, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized names decode to
// KindUnknown instead of failing so that a foreign producer cannot poison a whole queue.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		*k = KindUnknown
		return nil
	}
	*k = parsed
	return nil
}
