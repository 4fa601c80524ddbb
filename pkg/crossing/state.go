package crossing

// State is the controller state carried from one tick to the next.
type State struct {
	PedState    bool  // A crossing was requested and has not been granted yet
	LightState  bool  // true = vehicles stop (red), false = vehicles go (green)
	BuzzerState bool  // Warning buzzer
	CrossState  bool  // A crossing window is active
	Dimmer      bool  // Red and green fully off; idle rest state
	CrossTimer  int64 // Remaining window time (ms) as of the last tick
	Window      Window
}

// Inputs are the values sampled at the start of a tick.
type Inputs struct {
	Requested bool    // Request input read pressed this tick
	Distance  float32 // Filtered distance (cm)
	Now       int64   // Clock reading (ms)
}

// NewState returns the power-on state: red light, no request, no window.
func NewState(cfg Config) State {
	w := IdleWindow(cfg.CrossTime)
	return State{
		LightState: true,
		CrossTimer: w.Remaining(0),
		Window:     w,
	}
}

// Step evaluates one tick of the crossing state machine.
//
// A request latches until it can be granted. It is granted on a tick where the
// filtered distance is safe and no window is active; the new window starts
// immediately. While unsafe, a pending request holds vehicles on red and
// sounds the buzzer. A granted window always runs for its full length: the
// per-tick safety check only toggles the warning, and a request arriving
// mid-window waits for the window to end.
func Step(cfg Config, st State, in Inputs) State {
	if in.Requested {
		st.PedState = true
	}

	st.refresh(in.Now)
	safe := Safe(in.Distance, cfg.MinDistance)

	switch {
	case st.PedState && !st.CrossState:
		st.Dimmer = false
		if safe {
			st.Window = st.Window.Open(in.Now)
			st.LightState = false
			st.PedState = false
			st.refresh(in.Now)
		} else {
			st.LightState = true
			st.BuzzerState = true
		}
	case !st.PedState && !st.CrossState:
		st.BuzzerState = false
		st.LightState = true
		if st.CrossTimer == -st.Window.Duration {
			st.Dimmer = true
		}
	}

	if st.CrossState {
		if safe {
			st.BuzzerState = false
			st.LightState = false
		} else {
			st.BuzzerState = true
			st.LightState = true
		}
	}

	return st
}

func (st *State) refresh(now int64) {
	st.CrossTimer = st.Window.Remaining(now)
	st.CrossState = st.CrossTimer >= 0
}
