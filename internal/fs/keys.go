package fs

import "fmt"

// KeyGen generates Redis key and channel names for a given volume.
type KeyGen struct {
	Volume string
}

// NewKeyGen creates a KeyGen for the given volume.
func NewKeyGen(volume string) *KeyGen {
	return &KeyGen{Volume: volume}
}

// Events returns the pub/sub channel resource events are published on.
// e.g., fs:main:events
func (k *KeyGen) Events() string {
	return fmt.Sprintf("fs:%s:events", k.Volume)
}

// Queue returns the list raw watch notifications are pushed onto.
// e.g., fs:main:watch:queue
func (k *KeyGen) Queue() string {
	return fmt.Sprintf("fs:%s:watch:queue", k.Volume)
}

// EventsPattern returns a PSUBSCRIBE pattern matching the event channel of every volume.
func EventsPattern() string {
	return "fs:*:events"
}
