package watch

import (
	"fmt"
	"strings"
)

// RepeatedChangePolicy decides what an Executor dispatches when a multi-notification
// cycle leaves exactly one path with more than one change.
type RepeatedChangePolicy int

const (
	// RepeatedBatch dispatches a batch event holding the single path and all its changes.
	RepeatedBatch RepeatedChangePolicy = iota
	// RepeatedDrop dispatches nothing.
	RepeatedDrop
	// RepeatedFirst collapses the cycle to a typed event built from the first change.
	RepeatedFirst
)

func (p RepeatedChangePolicy) String() string {
	switch p {
	case RepeatedBatch:
		return "batch"
	case RepeatedDrop:
		return "drop"
	case RepeatedFirst:
		return "first"
	}
	return fmt.Sprintf("RepeatedChangePolicy(%d)", int(p))
}

// ParseRepeatedChangePolicy parses batch, drop or first.
func ParseRepeatedChangePolicy(s string) (RepeatedChangePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "batch":
		return RepeatedBatch, nil
	case "drop":
		return RepeatedDrop, nil
	case "first":
		return RepeatedFirst, nil
	}
	return RepeatedBatch, fmt.Errorf("unknown repeated-change policy %q (want batch, drop or first)", s)
}
