package crossing

import "time"

// Ranger measures the distance to the nearest obstacle in the crossing path.
// Measure blocks for at most timeout (plus any settling delay) and returns
// sensor.ErrNoEcho when nothing came back.
type Ranger interface {
	Measure(timeout time.Duration) (int, error)
}

// Button is the pedestrian request input.
type Button interface {
	Requested() bool
}

// Actuators accepts the per-tick output commands. Writes are idempotent;
// a failed write is corrected on the next tick.
type Actuators interface {
	SetLights(red, yellow, green bool) error
	SetBuzzer(on bool) error
	SetGate(pos GatePosition) error
	SetDisplay(glyph int) error
}

// Clock is a monotonic millisecond clock.
type Clock interface {
	Millis() int64
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

// Millis implements Clock.
func (f ClockFunc) Millis() int64 { return f() }

// SinceClock returns a Clock counting milliseconds since start.
func SinceClock(start time.Time) Clock {
	return ClockFunc(func() int64 {
		return time.Since(start).Milliseconds()
	})
}
