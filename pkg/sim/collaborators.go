package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/itohio/gocrossing/pkg/crossing"
)

// Button is a request input that latches presses until the controller reads them.
type Button struct {
	pending atomic.Bool
}

var _ crossing.Button = (*Button)(nil)

// Press registers a request.
func (b *Button) Press() {
	b.pending.Store(true)
}

// Requested implements crossing.Button. Each press is reported once.
func (b *Button) Requested() bool {
	return b.pending.Swap(false)
}

// Clock is a manually advanced millisecond clock.
type Clock struct {
	now atomic.Int64
}

var _ crossing.Clock = (*Clock)(nil)

// Millis implements crossing.Clock.
func (c *Clock) Millis() int64 {
	return c.now.Load()
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.now.Add(d.Milliseconds())
}

// Set moves the clock to ms.
func (c *Clock) Set(ms int64) {
	c.now.Store(ms)
}

// Actuators records the last command written to every output.
type Actuators struct {
	mu     sync.RWMutex
	last   crossing.Commands
	writes int
}

var _ crossing.Actuators = (*Actuators)(nil)

// NewActuators creates actuators in the power-on state (red, gate up, display blank).
func NewActuators() *Actuators {
	return &Actuators{last: crossing.Map(crossing.State{LightState: true, CrossTimer: -1})}
}

func (a *Actuators) SetLights(red, yellow, green bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last.Red, a.last.Yellow, a.last.Green = red, yellow, green
	a.writes++
	return nil
}

func (a *Actuators) SetBuzzer(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last.Buzzer = on
	return nil
}

func (a *Actuators) SetGate(pos crossing.GatePosition) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last.Gate = pos
	return nil
}

func (a *Actuators) SetDisplay(glyph int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last.Display = glyph
	return nil
}

// Last returns the most recent outputs.
func (a *Actuators) Last() crossing.Commands {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Writes returns how many ticks drove the outputs.
func (a *Actuators) Writes() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.writes
}
