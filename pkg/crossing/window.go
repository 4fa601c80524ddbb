package crossing

// Window is the crossing interval during which pedestrians have right-of-way.
type Window struct {
	Start    int64 // Clock time the window opened (ms)
	Duration int64 // Window length (ms)
}

// IdleWindow returns a window that has long expired at clock zero.
// Its start lies one millisecond before -duration, so Remaining(0) is
// negative and no window is active at boot.
func IdleWindow(duration int64) Window {
	return Window{Start: -duration - 1, Duration: duration}
}

// Open starts a new window at now.
func (w Window) Open(now int64) Window {
	w.Start = now
	return w
}

// Remaining returns Start+Duration-now clamped below at -Duration.
// A non-negative result means the window is active; exactly -Duration means
// the controller has been idle for at least a full window length.
func (w Window) Remaining(now int64) int64 {
	r := w.Start + w.Duration - now
	if r < -w.Duration {
		r = -w.Duration
	}
	return r
}

// Active reports whether the window is open at now.
func (w Window) Active(now int64) bool {
	return w.Remaining(now) >= 0
}

// Rested reports whether the timer has fully decayed.
func (w Window) Rested(now int64) bool {
	return w.Remaining(now) == -w.Duration
}
