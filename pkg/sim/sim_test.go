package sim

import (
	"testing"
	"time"

	"github.com/itohio/gocrossing/pkg/config"
	"github.com/itohio/gocrossing/pkg/crossing"
	"github.com/itohio/gocrossing/pkg/segment"
	"github.com/itohio/gocrossing/pkg/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietScene(clock crossing.Clock) *Scene {
	cfg := config.Default().Mock
	cfg.NoiseLevel = 0
	cfg.DropoutRate = 0
	cfg.Seed = 1
	return NewScene(&cfg, clock)
}

func TestScene_ClearPath(t *testing.T) {
	clock := &Clock{}
	s := quietScene(clock)

	cm, err := s.Measure(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 120, cm)
}

func TestScene_PeriodicObstacle(t *testing.T) {
	clock := &Clock{}
	s := quietScene(clock)

	tests := []struct {
		at      time.Duration
		blocked bool
	}{
		{at: 0, blocked: false}, // no obstacle at boot
		{at: 24 * time.Second, blocked: false},
		{at: 25 * time.Second, blocked: true},
		{at: 27 * time.Second, blocked: true},
		{at: 28 * time.Second, blocked: false},
		{at: 50*time.Second + time.Millisecond, blocked: true},
	}
	for _, tt := range tests {
		clock.Set(tt.at.Milliseconds())
		cm, err := s.Measure(0)
		require.NoError(t, err)
		if tt.blocked {
			assert.Equal(t, 12, cm, "at %v", tt.at)
		} else {
			assert.Equal(t, 120, cm, "at %v", tt.at)
		}
	}
}

func TestScene_ManualBlock(t *testing.T) {
	clock := &Clock{}
	s := quietScene(clock)

	s.SetBlocked(true)
	assert.True(t, s.Blocked(0))
	cm, _ := s.Measure(0)
	assert.Equal(t, 12, cm)

	s.SetBlocked(false)
	assert.False(t, s.Blocked(0))
}

func TestScene_Dropout(t *testing.T) {
	cfg := config.Default().Mock
	cfg.DropoutRate = 1
	cfg.Seed = 7
	s := NewScene(&cfg, &Clock{})

	_, err := s.Measure(0)
	assert.ErrorIs(t, err, sensor.ErrNoEcho)
}

func TestScene_OutOfRange(t *testing.T) {
	cfg := config.Default().Mock
	cfg.ClearDistance = MaxRange + 50
	cfg.NoiseLevel = 0
	cfg.DropoutRate = 0
	cfg.Seed = 3
	s := NewScene(&cfg, &Clock{})

	_, err := s.Measure(0)
	assert.ErrorIs(t, err, sensor.ErrNoEcho)
}

func TestScene_NoiseBounded(t *testing.T) {
	cfg := config.Default().Mock
	cfg.DropoutRate = 0
	cfg.NoiseLevel = 5
	cfg.Seed = 11
	s := NewScene(&cfg, &Clock{})

	for range 1000 {
		cm, err := s.Measure(0)
		require.NoError(t, err)
		assert.InDelta(t, 120, cm, 5)
	}
}

func TestScene_SeedIsDeterministic(t *testing.T) {
	cfg := config.Default().Mock
	cfg.Seed = 99
	a := NewScene(&cfg, &Clock{})
	b := NewScene(&cfg, &Clock{})

	for range 100 {
		da, ea := a.Measure(0)
		db, eb := b.Measure(0)
		assert.Equal(t, da, db)
		assert.Equal(t, ea, eb)
	}
}

func TestButton_Latch(t *testing.T) {
	var b Button
	assert.False(t, b.Requested())

	b.Press()
	b.Press()
	assert.True(t, b.Requested())
	assert.False(t, b.Requested(), "a press is reported once")
}

func TestClock(t *testing.T) {
	var c Clock
	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, int64(1500), c.Millis())
	c.Set(10)
	assert.Equal(t, int64(10), c.Millis())
}

// TestSimulatedSession drives a real controller through a scripted session.
func TestSimulatedSession(t *testing.T) {
	clock := &Clock{}
	scene := quietScene(clock)
	button := &Button{}
	act := NewActuators()
	assert.True(t, act.Last().Red)

	ctrl := crossing.New(crossing.DefaultConfig(), scene, button, act, clock)

	tick := func(n int) {
		for range n {
			clock.Advance(30 * time.Millisecond)
			ctrl.Tick()
		}
	}

	tick(10)
	button.Press()
	tick(1)
	require.True(t, ctrl.State().CrossState)
	assert.Equal(t, crossing.GateDown, act.Last().Gate)
	assert.Equal(t, 9, act.Last().Display)

	// Someone steps into the path mid-crossing: warning, window continues.
	scene.SetBlocked(true)
	tick(20)
	assert.True(t, act.Last().Buzzer)
	assert.True(t, act.Last().Red)
	assert.True(t, ctrl.State().CrossState)

	scene.SetBlocked(false)
	tick(400)
	assert.False(t, ctrl.State().CrossState)
	assert.Equal(t, crossing.GateUp, act.Last().Gate)
	assert.Equal(t, segment.Blank, act.Last().Display)
	assert.Equal(t, 431, act.Writes())
}
