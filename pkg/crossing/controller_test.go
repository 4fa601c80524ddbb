package crossing

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/itohio/gocrossing/pkg/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTimeout = errors.New("no echo")

type fakeRanger struct {
	cm       int
	err      error
	timeouts []time.Duration
}

func (r *fakeRanger) Measure(timeout time.Duration) (int, error) {
	r.timeouts = append(r.timeouts, timeout)
	return r.cm, r.err
}

type fakeButton struct {
	pressed bool
}

func (b *fakeButton) Requested() bool {
	p := b.pressed
	b.pressed = false
	return p
}

type fakeActuators struct {
	red, yellow, green bool
	buzzer             bool
	gate               GatePosition
	display            int
	writes             int

	lightsErr error
}

func (a *fakeActuators) SetLights(red, yellow, green bool) error {
	a.red, a.yellow, a.green = red, yellow, green
	a.writes++
	return a.lightsErr
}

func (a *fakeActuators) SetBuzzer(on bool) error {
	a.buzzer = on
	return nil
}

func (a *fakeActuators) SetGate(pos GatePosition) error {
	a.gate = pos
	return nil
}

func (a *fakeActuators) SetDisplay(glyph int) error {
	a.display = glyph
	return nil
}

type manualClock struct {
	now int64
}

func (c *manualClock) Millis() int64 { return c.now }

type rig struct {
	ranger    *fakeRanger
	button    *fakeButton
	actuators *fakeActuators
	clock     *manualClock
	ctrl      *Controller
	logs      []string
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		ranger:    &fakeRanger{cm: 100},
		button:    &fakeButton{},
		actuators: &fakeActuators{},
		clock:     &manualClock{now: 1},
	}
	r.ctrl = New(DefaultConfig(), r.ranger, r.button, r.actuators, r.clock)
	r.ctrl.Logf = func(format string, args ...any) {
		r.logs = append(r.logs, fmt.Sprintf(format, args...))
	}
	return r
}

func TestController_IdleTick(t *testing.T) {
	r := newRig(t)
	tick := r.ctrl.Tick()

	assert.False(t, tick.Pressed)
	assert.Equal(t, 100, tick.Raw)
	assert.Equal(t, float32(100), tick.Filtered)
	assert.True(t, r.actuators.red)
	assert.False(t, r.actuators.green)
	assert.False(t, r.actuators.yellow)
	assert.Equal(t, GateUp, r.actuators.gate)
	assert.Equal(t, segment.Blank, r.actuators.display)
	assert.Equal(t, []time.Duration{DefaultConfig().EchoTimeout}, r.ranger.timeouts)
}

func TestController_Crossing(t *testing.T) {
	r := newRig(t)
	r.button.pressed = true
	r.clock.now = 1000

	tick := r.ctrl.Tick()
	require.True(t, tick.Pressed)
	assert.True(t, tick.State.CrossState)
	assert.Equal(t, GateDown, r.actuators.gate)
	assert.True(t, r.actuators.yellow)
	assert.True(t, r.actuators.green)
	assert.Equal(t, 9, r.actuators.display)

	// Remaining 5499 ms shows 5.
	r.clock.now = 1000 + 4500
	r.ctrl.Tick()
	assert.Equal(t, 5, r.actuators.display)

	// Remaining 4000 ms shows 4, one millisecond later 3.
	r.clock.now = 1000 + DefaultCrossTime - 4000
	r.ctrl.Tick()
	assert.Equal(t, 4, r.actuators.display)

	r.clock.now++
	r.ctrl.Tick()
	assert.Equal(t, 3, r.actuators.display)

	r.clock.now = 1000 + DefaultCrossTime + 1
	tick = r.ctrl.Tick()
	assert.False(t, tick.State.CrossState)
	assert.Equal(t, GateUp, r.actuators.gate)
	assert.False(t, r.actuators.yellow)
	assert.True(t, r.actuators.red)
	assert.Equal(t, segment.Blank, r.actuators.display)
}

func TestController_ObstacleFilteredBeforeDeferring(t *testing.T) {
	r := newRig(t)
	r.ranger.cm = 5

	// Seven close readings leave the mean at 100*3/10+5*7/10 = 33.5 cm: still safe.
	for range 7 {
		r.ctrl.Tick()
	}
	assert.InDelta(t, 33.5, r.ctrl.history.Mean(), 1e-3)

	r.ctrl.Tick()
	r.ctrl.Tick()
	r.button.pressed = true
	tick := r.ctrl.Tick()
	assert.Less(t, tick.Filtered, float32(DefaultMinDistance))
	assert.True(t, tick.State.PedState)
	assert.False(t, tick.State.CrossState)
	assert.True(t, r.actuators.buzzer)
	assert.True(t, r.actuators.red)
}

func TestController_NoEchoIsUnsafe(t *testing.T) {
	r := newRig(t)
	r.ranger.err = errTimeout
	r.ranger.cm = 400 // ignored on error

	var tick Tick
	for range DefaultConfig().HistorySize {
		tick = r.ctrl.Tick()
		require.True(t, tick.NoEcho)
		require.Equal(t, 0, tick.Raw)
	}
	assert.Equal(t, float32(0), tick.Filtered)

	r.button.pressed = true
	tick = r.ctrl.Tick()
	assert.True(t, tick.State.PedState, "an unresponsive sensor must never grant a crossing")
	assert.False(t, tick.State.CrossState)
	assert.NotEmpty(t, r.logs)
	assert.Contains(t, r.logs[0], "no echo")
}

func TestController_ActuatorErrorsAreLogged(t *testing.T) {
	r := newRig(t)
	r.actuators.lightsErr = errors.New("i2c nack")

	r.ctrl.Tick()
	r.ctrl.Tick()

	assert.Equal(t, 2, r.actuators.writes, "outputs are re-driven every tick")
	require.Len(t, r.logs, 2)
	assert.Contains(t, r.logs[0], "i2c nack")
}

func TestController_Run(t *testing.T) {
	r := newRig(t)
	ticks := 0
	r.ctrl.Run(func() bool { return ticks == 5 }, func(Tick) {
		ticks++
		r.clock.now += 30
	})

	assert.Equal(t, 5, ticks)
	assert.Len(t, r.ranger.timeouts, 5)
}

func TestController_NilLogf(t *testing.T) {
	ranger := &fakeRanger{err: errTimeout}
	ctrl := New(DefaultConfig(), ranger, &fakeButton{}, &fakeActuators{}, &manualClock{})

	assert.NotPanics(t, func() { ctrl.Tick() })
}
