// Package simulate runs the node core against a scripted wake-pin waveform
// instead of hardware. One Sim value plays both cycle collaborators: the
// board (pin sampling, status LED) and the sleep controller (virtual time
// advances to whichever planned wake source fires first).
package simulate

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/itohio/godoze/pkg/retained"
	"github.com/itohio/godoze/pkg/sleepctl"
	"github.com/itohio/godoze/pkg/wake"
)

// ErrIdle is returned by DeepSleep when no planned wake source can ever
// fire: the simulated device would sleep forever.
var ErrIdle = errors.New("no remaining wake source can fire")

// wakeLatency models the small delay between a level condition becoming
// true and the chip actually waking. It also guarantees virtual time makes
// progress when the pin already sits at the planned wake level.
const wakeLatency = time.Millisecond

// Step is one scheduled level change on the wake pin, at an offset from the
// start of the simulation. The pin is Low before the first step.
type Step struct {
	At    time.Duration
	Level retained.Level
}

// Sim is a scripted board plus sleep controller.
type Sim struct {
	mu       sync.Mutex
	steps    []Step
	now      time.Duration
	cause    wake.Cause
	led      bool
	plans    []sleepctl.Plan
	realTime bool
}

// New creates a simulation over the given waveform. The first wake cause is
// a power-on, exactly like a freshly flashed device.
func New(steps []Step) *Sim {
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Sim{
		steps: sorted,
		cause: wake.CausePowerOn,
	}
}

// RealTime makes DeepSleep actually wait out the simulated interval on the
// wall clock, for interactive runs.
func (s *Sim) RealTime(enable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.realTime = enable
}

// WakeCause implements sleepctl.Controller.
func (s *Sim) WakeCause() wake.Cause {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// SampleWakePin implements node.Board.
func (s *Sim) SampleWakePin() retained.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return levelAt(s.steps, s.now)
}

// SetStatusLED implements node.Board.
func (s *Sim) SetStatusLED(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.led = on
}

// LEDOn reports the current LED state.
func (s *Sim) LEDOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led
}

// Elapsed returns the simulated time since start.
func (s *Sim) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Plans returns every plan handed to DeepSleep so far.
func (s *Sim) Plans() []sleepctl.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sleepctl.Plan, len(s.plans))
	copy(out, s.plans)
	return out
}

// DeepSleep implements sleepctl.Controller. It advances virtual time to the
// earliest firing wake source and records the corresponding cause for the
// next cycle. The LED goes dark: deep sleep cuts its power.
func (s *Sim) DeepSleep(p sleepctl.Plan) error {
	s.mu.Lock()
	s.plans = append(s.plans, p)
	s.led = false

	pinAt, pinOK := nextLevelInstant(s.steps, s.now, p.Pin.Level)

	timerAt := time.Duration(-1)
	if p.Timer != nil {
		timerAt = s.now + p.Timer.Duration
	}

	var wakeAt time.Duration
	switch {
	case pinOK && (timerAt < 0 || pinAt <= timerAt):
		wakeAt = pinAt
		s.cause = wake.CauseLevel
	case timerAt >= 0:
		wakeAt = timerAt
		s.cause = wake.CauseTimer
	default:
		s.mu.Unlock()
		return ErrIdle
	}

	wait := wakeAt - s.now
	s.now = wakeAt
	realTime := s.realTime
	s.mu.Unlock()

	if realTime {
		time.Sleep(wait)
	}
	return nil
}

// levelAt returns the pin level at instant t: the last step at or before t,
// Low before the first step.
func levelAt(steps []Step, t time.Duration) retained.Level {
	level := retained.Low
	for _, st := range steps {
		if st.At > t {
			break
		}
		level = st.Level
	}
	return level
}

// nextLevelInstant finds the earliest instant strictly useful for a level
// wake armed at `now`: immediately (plus wake latency) when the pin already
// sits at the target, otherwise the first scheduled change that lands it
// there.
func nextLevelInstant(steps []Step, now time.Duration, target retained.Level) (time.Duration, bool) {
	if levelAt(steps, now) == target {
		return now + wakeLatency, true
	}
	for _, st := range steps {
		if st.At <= now {
			continue
		}
		if st.Level == target {
			return st.At, true
		}
	}
	return 0, false
}
