package sleepctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/godoze/pkg/retained"
)

func TestPlanFor(t *testing.T) {
	tests := []struct {
		name      string
		state     retained.State
		wantLevel retained.Level
		wantTimer bool
	}{
		{
			name:      "waiting for high, no timer",
			state:     retained.State{WakeLevel: retained.High},
			wantLevel: retained.High,
			wantTimer: false,
		},
		{
			name:      "waiting for low, no timer",
			state:     retained.State{WakeLevel: retained.Low},
			wantLevel: retained.Low,
			wantTimer: false,
		},
		{
			name:      "settle timer armed",
			state:     retained.State{WakeLevel: retained.High, TimerArmed: true},
			wantLevel: retained.High,
			wantTimer: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlanFor(tt.state)
			assert.Equal(t, tt.wantLevel, p.Pin.Level)
			if tt.wantTimer {
				require.NotNil(t, p.Timer)
				assert.Equal(t, SettleTimeout, p.Timer.Duration)
			} else {
				assert.Nil(t, p.Timer)
			}
		})
	}
}

func TestPlan_String(t *testing.T) {
	p := PlanFor(retained.State{WakeLevel: retained.High})
	assert.Equal(t, "pin@high", p.String())

	p = PlanFor(retained.State{WakeLevel: retained.High, TimerArmed: true})
	assert.Equal(t, "pin@high+timer(5s)", p.String())
}
