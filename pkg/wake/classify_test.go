package wake

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/godoze/pkg/retained"
	"github.com/itohio/godoze/pkg/wire"
)

var known = wire.MacAddress{0xA4, 0xCF, 0x12, 0x00, 0x0B, 0x01}

func state(level retained.Level, armed bool) retained.State {
	return retained.State{
		WakeLevel:   level,
		Coordinator: known,
		TimerArmed:  armed,
	}
}

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		name      string
		level     retained.Level
		armed     bool
		cause     Cause
		wantLevel retained.Level
		wantArmed bool
		wantEmit  bool
	}{
		{
			name:  "timer expiry while waiting for high reports settled value",
			level: retained.High, armed: false, cause: CauseTimer,
			wantLevel: retained.High, wantArmed: false, wantEmit: true,
		},
		{
			name:  "settle timer expiry confirms the pulse",
			level: retained.High, armed: true, cause: CauseTimer,
			wantLevel: retained.High, wantArmed: false, wantEmit: true,
		},
		{
			name:  "timer expiry while waiting for low is a no-op",
			level: retained.Low, armed: false, cause: CauseTimer,
			wantLevel: retained.Low, wantArmed: false, wantEmit: false,
		},
		{
			name:  "unarmed high wake reports immediately",
			level: retained.High, armed: false, cause: CauseLevel,
			wantLevel: retained.Low, wantArmed: false, wantEmit: true,
		},
		{
			name:  "armed high wake is a bounce and cancels silently",
			level: retained.High, armed: true, cause: CauseLevel,
			wantLevel: retained.Low, wantArmed: false, wantEmit: false,
		},
		{
			name:  "low wake arms the settle timer and defers",
			level: retained.Low, armed: false, cause: CauseLevel,
			wantLevel: retained.High, wantArmed: true, wantEmit: false,
		},
		{
			name:  "other wake sources leave everything untouched",
			level: retained.Low, armed: false, cause: CauseOther,
			wantLevel: retained.Low, wantArmed: false, wantEmit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, emit := Classify(state(tt.level, tt.armed), tt.cause)
			assert.Equal(t, tt.wantLevel, got.WakeLevel)
			assert.Equal(t, tt.wantArmed, got.TimerArmed)
			assert.Equal(t, tt.wantEmit, emit)
			assert.Equal(t, known, got.Coordinator, "coordinator must survive")
		})
	}
}

func TestClassify_PowerOnResets(t *testing.T) {
	// Whatever garbage the retention memory held, a cold boot yields the
	// defined defaults and never requests a report.
	garbage := []retained.State{
		{WakeLevel: retained.Low, Coordinator: known, TimerArmed: true},
		{WakeLevel: retained.High, Coordinator: wire.MacAddress{}, TimerArmed: false},
		{WakeLevel: retained.Level(37), Coordinator: known, TimerArmed: true},
	}
	for _, g := range garbage {
		got, emit := Classify(g, CausePowerOn)
		assert.Equal(t, retained.Reset(), got)
		assert.False(t, emit)
	}
}

func TestClassify_NoDoubleArm(t *testing.T) {
	// Over any cause sequence, TimerArmed never coexists with a low wake
	// level once a transition completes.
	rng := rand.New(rand.NewSource(1))
	causes := []Cause{CausePowerOn, CauseTimer, CauseLevel, CauseOther}

	s := retained.Reset()
	for i := 0; i < 10000; i++ {
		s, _ = Classify(s, causes[rng.Intn(len(causes))])
		if s.TimerArmed {
			assert.Equal(t, retained.High, s.WakeLevel, "step %d", i)
		}
	}
}

func TestClassify_CoordinatorMonotonic(t *testing.T) {
	// Short of a power-on cause, no transition forgets the coordinator.
	s := state(retained.High, false)
	for _, c := range []Cause{CauseLevel, CauseTimer, CauseOther, CauseLevel, CauseLevel, CauseTimer} {
		s, _ = Classify(s, c)
		assert.Equal(t, known, s.Coordinator)
	}

	s, _ = Classify(s, CausePowerOn)
	assert.False(t, s.CoordinatorKnown())
}

func TestClassify_DebounceSequence(t *testing.T) {
	// Falling edge, settle timeout, then a clean rising edge: exactly two
	// reports, one per settled edge.
	s := state(retained.High, false)

	s, emit := Classify(s, CauseLevel) // falls, waits for low... reports high edge
	assert.True(t, emit)
	assert.Equal(t, retained.Low, s.WakeLevel)

	s, emit = Classify(s, CauseLevel) // low seen, arm settle timer
	assert.False(t, emit)
	assert.True(t, s.TimerArmed)

	s, emit = Classify(s, CauseTimer) // settled
	assert.True(t, emit)
	assert.False(t, s.TimerArmed)
	assert.Equal(t, retained.High, s.WakeLevel)
}

func TestClassify_BounceSequence(t *testing.T) {
	// A pulse that bounces back within the settle window is swallowed whole.
	s := state(retained.Low, false)

	s, emit := Classify(s, CauseLevel)
	assert.False(t, emit)
	assert.True(t, s.TimerArmed)

	s, emit = Classify(s, CauseLevel)
	assert.False(t, emit)
	assert.False(t, s.TimerArmed)
	assert.Equal(t, retained.Low, s.WakeLevel)
}

func TestCause_String(t *testing.T) {
	assert.Equal(t, "poweron", CausePowerOn.String())
	assert.Equal(t, "timer", CauseTimer.String())
	assert.Equal(t, "level", CauseLevel.String())
	assert.Equal(t, "other", CauseOther.String())
}
