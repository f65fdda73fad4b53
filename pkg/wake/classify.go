// Package wake turns a raw wake-up cause into the next retained state and a
// report decision. Classify is a pure function so it can be tested without
// any hardware behind it.
package wake

import "github.com/itohio/godoze/pkg/retained"

// Cause is the reason the node left deep sleep, as reported by the sleep
// controller at program entry.
type Cause uint8

const (
	// CausePowerOn covers cold boot and any undefined wake reason; retained
	// memory cannot be trusted.
	CausePowerOn Cause = iota

	// CauseTimer means the settle timer expired.
	CauseTimer

	// CauseLevel means the monitored pin was observed at the armed level.
	CauseLevel

	// CauseOther is any wake source this core does not handle.
	CauseOther
)

// String returns a short name for cycle diagnostics.
func (c Cause) String() string {
	switch c {
	case CausePowerOn:
		return "poweron"
	case CauseTimer:
		return "timer"
	case CauseLevel:
		return "level"
	default:
		return "other"
	}
}

// Classify applies one wake event to the retained state and reports whether
// this cycle must send a status update.
//
// The pin wake source is level-triggered only, so WakeLevel alternates on
// every genuine pin wake to emulate dual-edge detection across consecutive
// wakes. A pin wake while waiting for a low level does not report
// immediately: it arms the settle timer and waits for confirmation. The next
// cycle either times out (timer wake with the settle timer armed) and reports
// the settled value, or wakes on the pin again inside the settle window,
// which is a bounce and is cancelled silently.
//
// TimerArmed is never true together with WakeLevel == Low after Classify
// returns: the only transition that arms the timer also flips the level to
// High.
func Classify(s retained.State, cause Cause) (retained.State, bool) {
	emit := false

	switch cause {
	case CauseTimer:
		if s.WakeLevel == retained.High {
			s.TimerArmed = false
			emit = true
		}

	case CauseLevel:
		switch {
		case s.WakeLevel == retained.High && !s.TimerArmed:
			emit = true
		case s.WakeLevel == retained.High && s.TimerArmed:
			// Bounce back within the settle window: cancel.
			s.TimerArmed = false
		default:
			// First transition of a potential pulse: defer the report
			// until the signal has settled.
			s.TimerArmed = true
		}
		s.WakeLevel = s.WakeLevel.Invert()

	case CausePowerOn:
		// Retained memory is garbage here; start from the defined state.
		s = retained.Reset()

	case CauseOther:
	}

	return s, emit
}
