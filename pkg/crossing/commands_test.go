package crossing

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/itohio/gocrossing/pkg/segment"
	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Commands
	}{
		{
			name:  "idle red",
			state: State{LightState: true, CrossTimer: -1},
			want:  Commands{Red: true, Gate: GateUp, Display: segment.Blank},
		},
		{
			name:  "dimmed",
			state: State{LightState: true, Dimmer: true, CrossTimer: -DefaultCrossTime},
			want:  Commands{Gate: GateUp, Display: segment.Blank},
		},
		{
			name:  "deferred request",
			state: State{PedState: true, LightState: true, BuzzerState: true, CrossTimer: -DefaultCrossTime},
			want:  Commands{Red: true, Buzzer: true, Gate: GateUp, Display: segment.Blank},
		},
		{
			name:  "active window safe",
			state: State{CrossState: true, CrossTimer: 4321},
			want:  Commands{Green: true, Yellow: true, Gate: GateDown, Display: 4},
		},
		{
			name:  "active window unsafe",
			state: State{CrossState: true, LightState: true, BuzzerState: true, CrossTimer: 999},
			want:  Commands{Red: true, Yellow: true, Buzzer: true, Gate: GateDown, Display: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Map(tt.state)); diff != "" {
				t.Errorf("Map() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMap_RedGreenExclusive(t *testing.T) {
	for _, light := range []bool{false, true} {
		for _, dimmer := range []bool{false, true} {
			for _, cross := range []bool{false, true} {
				cmd := Map(State{LightState: light, Dimmer: dimmer, CrossState: cross, CrossTimer: 500})
				assert.False(t, cmd.Red && cmd.Green, "light=%v dimmer=%v cross=%v", light, dimmer, cross)
				if dimmer {
					assert.False(t, cmd.Red || cmd.Green)
				}
			}
		}
	}
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		timer int64
		want  int
	}{
		{timer: 9999, want: 9},
		{timer: 9000, want: 9},
		{timer: 8999, want: 8},
		{timer: 5499, want: 5},
		{timer: 4000, want: 4},
		{timer: 3999, want: 3},
		{timer: 1000, want: 1},
		{timer: 999, want: 0},
		{timer: 0, want: 0},
		{timer: -1, want: segment.Blank},
		{timer: 25_000, want: 9},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Countdown(tt.timer), "timer=%d", tt.timer)
	}
}

func TestGatePosition_String(t *testing.T) {
	assert.Equal(t, "up", GateUp.String())
	assert.Equal(t, "down", GateDown.String())
}

func TestConfig_GateAngle(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 150, cfg.GateAngle(GateUp))
	assert.Equal(t, 50, cfg.GateAngle(GateDown))
}

func TestCommands_ApplyWritesEverything(t *testing.T) {
	a := &fakeActuators{lightsErr: errors.New("stuck relay")}
	cmd := Commands{Red: true, Buzzer: true, Gate: GateDown, Display: 3}

	err := cmd.Apply(a)
	assert.EqualError(t, err, "stuck relay")
	assert.True(t, a.buzzer)
	assert.Equal(t, GateDown, a.gate)
	assert.Equal(t, 3, a.display)
}
