// Package sleepctl builds the wake-source set for the next deep sleep cycle
// and defines the contract of the platform sleep controller.
package sleepctl

import (
	"fmt"
	"time"

	"github.com/itohio/godoze/pkg/retained"
	"github.com/itohio/godoze/pkg/wake"
)

// SettleTimeout is the fixed duration of the debounce timer wake source.
const SettleTimeout = 5 * time.Second

// LevelSource wakes the node when the monitored pin sits at Level.
type LevelSource struct {
	Level retained.Level
}

// TimerSource wakes the node after Duration.
type TimerSource struct {
	Duration time.Duration
}

// Plan is the complete wake-source set handed to the sleep controller.
// The pin source is always present; the timer source only when the settle
// timer is armed.
type Plan struct {
	Pin   LevelSource
	Timer *TimerSource
}

// String is used in cycle diagnostics.
func (p Plan) String() string {
	if p.Timer == nil {
		return fmt.Sprintf("pin@%s", p.Pin.Level)
	}
	return fmt.Sprintf("pin@%s+timer(%s)", p.Pin.Level, p.Timer.Duration)
}

// PlanFor derives the next cycle's wake sources from the retained state.
func PlanFor(s retained.State) Plan {
	p := Plan{Pin: LevelSource{Level: s.WakeLevel}}
	if s.TimerArmed {
		p.Timer = &TimerSource{Duration: SettleTimeout}
	}
	return p
}

// Controller is the platform deep-sleep mechanism. On real hardware
// DeepSleep never returns: execution resumes at program entry, where
// WakeCause reports why. Host implementations return once the simulated
// sleep interval has elapsed so the caller can loop.
type Controller interface {
	// WakeCause reports why the current program execution started.
	WakeCause() wake.Cause

	// DeepSleep powers the device down with the given wake sources.
	DeepSleep(p Plan) error
}
