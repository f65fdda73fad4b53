// Package retained holds the node state that must survive deep sleep.
// The state is a plain value: it is loaded once at wake, transformed by the
// wake classifier, and committed back before any fallible radio work. On a
// cold boot the backing memory is undefined until Reset is committed.
package retained

import (
	"fmt"

	"github.com/itohio/godoze/pkg/wire"
)

// Level is a logic level on the monitored wake pin.
type Level uint8

const (
	Low Level = iota
	High
)

// String returns "low" or "high".
func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Bit returns the level as a 0/1 wire byte.
func (l Level) Bit() byte {
	if l == High {
		return 1
	}
	return 0
}

// Invert returns the opposite level.
func (l Level) Invert() Level {
	if l == High {
		return Low
	}
	return High
}

// State is the full set of fields kept in sleep-surviving memory.
//
// WakeLevel is the pin level the next deep sleep cycle must wake on; it
// alternates on every genuine pin wake, which turns the level-only wake
// source into an edge detector across consecutive wakes. Coordinator is the
// peer that receives status reports; the broadcast address means "not yet
// discovered". TimerArmed requests the settle timer as an extra wake source.
type State struct {
	WakeLevel   Level
	Coordinator wire.MacAddress
	TimerArmed  bool
}

// Reset returns the defined cold-boot state: waiting for a high level, no
// coordinator, settle timer off.
func Reset() State {
	return State{
		WakeLevel:   High,
		Coordinator: wire.Broadcast(),
		TimerArmed:  false,
	}
}

// CoordinatorKnown reports whether discovery has completed.
func (s State) CoordinatorKnown() bool {
	return !s.Coordinator.IsBroadcast()
}

// String is used in cycle diagnostics.
func (s State) String() string {
	return fmt.Sprintf("level=%s coordinator=%s armed=%t", s.WakeLevel, s.Coordinator, s.TimerArmed)
}

// Store is the narrow accessor over the retention memory region. There is
// deliberately no partial-field access: the cycle owns a value snapshot and
// commits it whole.
type Store interface {
	// Load returns the current snapshot. Before the first Commit after a
	// cold boot the contents are undefined.
	Load() State

	// Commit replaces the snapshot.
	Commit(s State)
}
