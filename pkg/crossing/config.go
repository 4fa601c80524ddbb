package crossing

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultMinDistance is the safety threshold of the gate/lights variant (cm).
	DefaultMinDistance = 25
	// DefaultCrossTime is the crossing window length in milliseconds.
	DefaultCrossTime = 10*1000 - 1
	// DefaultGateUp and DefaultGateDown are servo angles in degrees.
	DefaultGateUp   = 150
	DefaultGateDown = 50

	// SimpleMinDistance and SimpleCrossTime are the constants of the simple variant.
	SimpleMinDistance = 100
	SimpleCrossTime   = 10 * 1000
)

// Config holds the controller constants.
type Config struct {
	MinDistance     float32       // Filtered distance at or above which the crossing is safe (cm)
	CrossTime       int64         // Crossing window length (ms)
	HistorySize     int           // Number of samples averaged by the distance filter
	DefaultDistance int           // Value the filter history is pre-filled with (cm)
	NoEchoDistance  int           // Sample substituted when the sensor reports no echo (cm)
	EchoTimeout     time.Duration // Passed to the ranger on every measurement
	GateUp          int           // Servo angle of the raised barrier (deg)
	GateDown        int           // Servo angle of the lowered barrier (deg)
}

// DefaultConfig returns the constants of the gate/lights variant.
func DefaultConfig() Config {
	return Config{
		MinDistance:     DefaultMinDistance,
		CrossTime:       DefaultCrossTime,
		HistorySize:     10,
		DefaultDistance: 100,
		NoEchoDistance:  0,
		EchoTimeout:     38 * time.Millisecond,
		GateUp:          DefaultGateUp,
		GateDown:        DefaultGateDown,
	}
}

// SimpleConfig returns the constants of the simple variant.
func SimpleConfig() Config {
	cfg := DefaultConfig()
	cfg.MinDistance = SimpleMinDistance
	cfg.CrossTime = SimpleCrossTime
	return cfg
}

// GateAngle returns the servo angle for a gate position.
func (c Config) GateAngle(pos GatePosition) int {
	if pos == GateDown {
		return c.GateDown
	}
	return c.GateUp
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("crossing: invalid config")

// Validate checks that the constants describe a usable controller.
func (c Config) Validate() error {
	switch {
	case c.CrossTime <= 0:
		return fmt.Errorf("%w: cross time %dms must be positive", ErrInvalidConfig, c.CrossTime)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: history size %d must be positive", ErrInvalidConfig, c.HistorySize)
	case c.MinDistance < 0:
		return fmt.Errorf("%w: negative min distance %v", ErrInvalidConfig, c.MinDistance)
	case float32(c.NoEchoDistance) >= c.MinDistance:
		// A sensor timeout would read as a clear crossing.
		return fmt.Errorf("%w: no-echo distance %d must be below min distance %v", ErrInvalidConfig, c.NoEchoDistance, c.MinDistance)
	}
	return nil
}
