package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itohio/gocrossing/pkg/crossing"
)

// ErrMalformed is wrapped by every Parse failure.
var ErrMalformed = errors.New("telemetry: malformed line")

// Record is one diagnostic line emitted by the controller per tick.
type Record struct {
	Timestamp   time.Time // Host receive time; not part of the line
	Pressed     bool      // Request input read pressed on this tick
	Distance    int       // Raw distance sample (cm)
	PedState    bool
	CrossTimer  int64 // Remaining crossing time (ms)
	LightState  bool
	BuzzerState bool
	CrossState  bool
}

// FromTick builds the record for a controller tick.
func FromTick(t crossing.Tick) Record {
	return Record{
		Pressed:     t.Pressed,
		Distance:    t.Raw,
		PedState:    t.State.PedState,
		CrossTimer:  t.State.CrossTimer,
		LightState:  t.State.LightState,
		BuzzerState: t.State.BuzzerState,
		CrossState:  t.State.CrossState,
	}
}

// AppendRecord appends the line for r to dst, without the trailing newline.
// Format:
//
//	{Button PRESS} {Distance 42} {pedState 0} {crossTimer -9999} {lightState 1} {buzzerState 0} {crossState 0}
//
// The {Button PRESS} field only appears on ticks where the button read pressed.
func AppendRecord(dst []byte, r Record) []byte {
	if r.Pressed {
		dst = append(dst, "{Button PRESS} "...)
	}
	dst = append(dst, "{Distance "...)
	dst = strconv.AppendInt(dst, int64(r.Distance), 10)
	dst = appendFlag(dst, "} {pedState ", r.PedState)
	dst = append(dst, "} {crossTimer "...)
	dst = strconv.AppendInt(dst, r.CrossTimer, 10)
	dst = appendFlag(dst, "} {lightState ", r.LightState)
	dst = appendFlag(dst, "} {buzzerState ", r.BuzzerState)
	dst = appendFlag(dst, "} {crossState ", r.CrossState)
	return append(dst, '}')
}

func appendFlag(dst []byte, prefix string, v bool) []byte {
	dst = append(dst, prefix...)
	if v {
		return append(dst, '1')
	}
	return append(dst, '0')
}

// Format returns the line for r.
func Format(r Record) string {
	return string(AppendRecord(make([]byte, 0, 112), r))
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return Format(r)
}

const (
	fieldDistance = 1 << iota
	fieldPedState
	fieldCrossTimer
	fieldLightState
	fieldBuzzerState
	fieldCrossState

	allFields = fieldDistance | fieldPedState | fieldCrossTimer | fieldLightState | fieldBuzzerState | fieldCrossState
)

// Parse decodes a diagnostic line. Unknown fields are skipped so that newer
// firmware can add fields without breaking older hosts.
func Parse(line string) (Record, error) {
	var (
		r    Record
		seen int
	)

	rest := strings.TrimSpace(line)
	for rest != "" {
		if rest[0] != '{' {
			return Record{}, fmt.Errorf("%w: expected '{' at %q", ErrMalformed, rest)
		}
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return Record{}, fmt.Errorf("%w: unterminated field %q", ErrMalformed, rest)
		}
		key, value, ok := strings.Cut(rest[1:end], " ")
		if !ok {
			return Record{}, fmt.Errorf("%w: field %q has no value", ErrMalformed, rest[:end+1])
		}
		rest = strings.TrimLeft(rest[end+1:], " ")

		var err error
		switch key {
		case "Button":
			r.Pressed = value == "PRESS"
		case "Distance":
			r.Distance, err = strconv.Atoi(value)
			seen |= fieldDistance
		case "pedState":
			r.PedState, err = parseFlag(value)
			seen |= fieldPedState
		case "crossTimer":
			r.CrossTimer, err = strconv.ParseInt(value, 10, 64)
			seen |= fieldCrossTimer
		case "lightState":
			r.LightState, err = parseFlag(value)
			seen |= fieldLightState
		case "buzzerState":
			r.BuzzerState, err = parseFlag(value)
			seen |= fieldBuzzerState
		case "crossState":
			r.CrossState, err = parseFlag(value)
			seen |= fieldCrossState
		}
		if err != nil {
			return Record{}, fmt.Errorf("%w: field %s: %w", ErrMalformed, key, err)
		}
	}

	if seen != allFields {
		return Record{}, fmt.Errorf("%w: missing fields in %q", ErrMalformed, line)
	}
	return r, nil
}

func parseFlag(v string) (bool, error) {
	switch v {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("invalid flag %q", v)
}

// State reconstructs the controller state the record was produced from.
// The dimmer is not logged but follows from the other fields: it is set
// exactly when the controller is idle with a fully decayed timer. The window
// start time cannot be recovered, only its duration.
func (r Record) State(cfg crossing.Config) crossing.State {
	return crossing.State{
		PedState:    r.PedState,
		LightState:  r.LightState,
		BuzzerState: r.BuzzerState,
		CrossState:  r.CrossState,
		Dimmer:      !r.PedState && !r.CrossState && r.CrossTimer == -cfg.CrossTime,
		CrossTimer:  r.CrossTimer,
		Window:      crossing.Window{Duration: cfg.CrossTime},
	}
}

// Commands reconstructs the actuator outputs of the tick.
func (r Record) Commands(cfg crossing.Config) crossing.Commands {
	return crossing.Map(r.State(cfg))
}
