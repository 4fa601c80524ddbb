package crossing

import "github.com/itohio/gocrossing/pkg/segment"

// GatePosition is one of the two named barrier positions.
type GatePosition int

const (
	GateUp GatePosition = iota
	GateDown
)

func (p GatePosition) String() string {
	if p == GateDown {
		return "down"
	}
	return "up"
}

// Commands is the full set of actuator outputs for one tick.
type Commands struct {
	Red     bool
	Yellow  bool
	Green   bool
	Buzzer  bool
	Gate    GatePosition
	Display int // Digit 0..9 or segment.Blank
}

// Map translates controller state to actuator commands.
// Red and green are never on together; the dimmer turns both off.
func Map(st State) Commands {
	cmd := Commands{
		Buzzer:  st.BuzzerState,
		Gate:    GateUp,
		Display: segment.Blank,
	}

	if !st.Dimmer {
		cmd.Red = st.LightState
		cmd.Green = !st.LightState
	}

	if st.CrossState {
		cmd.Gate = GateDown
		cmd.Yellow = true
		cmd.Display = Countdown(st.CrossTimer)
	}

	return cmd
}

// Countdown returns the whole seconds left in a window, capped to one digit.
func Countdown(crossTimer int64) int {
	if crossTimer < 0 {
		return segment.Blank
	}
	s := crossTimer / 1000
	if s > 9 {
		s = 9
	}
	return int(s)
}

// Apply writes the commands to the actuators and returns the first error.
// Every output is written even if an earlier one fails.
func (c Commands) Apply(a Actuators) error {
	errs := [...]error{
		a.SetLights(c.Red, c.Yellow, c.Green),
		a.SetBuzzer(c.Buzzer),
		a.SetGate(c.Gate),
		a.SetDisplay(c.Display),
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
