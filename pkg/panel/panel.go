// Package panel draws a live picture of the crossing hardware: the traffic
// lights, buzzer, barrier gate and countdown digit.
package panel

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"
	"github.com/itohio/gocrossing/pkg/crossing"
	"github.com/itohio/gocrossing/pkg/segment"
)

// PanelWidget is a custom Fyne widget mirroring the actuator outputs.
type PanelWidget struct {
	widget.BaseWidget

	cfg crossing.Config

	mu        sync.RWMutex
	cmd       crossing.Commands
	connected bool
}

// New creates a panel for a controller with the given constants.
// It starts disconnected with every output off.
func New(cfg crossing.Config) *PanelWidget {
	p := &PanelWidget{
		cfg: cfg,
		cmd: crossing.Commands{Gate: crossing.GateUp, Display: segment.Blank},
	}
	p.ExtendBaseWidget(p)
	return p
}

// Update shows new actuator outputs.
// This should be called from the monitor callback using fyne.Do().
func (p *PanelWidget) Update(cmd crossing.Commands) {
	p.mu.Lock()
	p.cmd = cmd
	p.connected = true
	p.mu.Unlock()

	p.Refresh()
}

// Disconnect greys out the panel.
func (p *PanelWidget) Disconnect() {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	p.Refresh()
}

// Commands returns the outputs currently shown.
func (p *PanelWidget) Commands() (crossing.Commands, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cmd, p.connected
}

// CreateRenderer creates the widget renderer.
func (p *PanelWidget) CreateRenderer() fyne.WidgetRenderer {
	r := newRenderer(p)
	r.Refresh()
	return r
}

// armEnd returns the free end of a gate arm of the given length pivoting at
// pivot. The down angle draws the arm horizontal pointing right, the up angle
// draws it vertical; servo angles in between are interpolated.
func armEnd(pivot fyne.Position, length float32, angle, down, up int) fyne.Position {
	frac := float32(0)
	if up != down {
		frac = float32(angle-down) / float32(up-down)
	}
	theta := frac * math32.Pi / 2
	return fyne.NewPos(
		pivot.X+length*math32.Cos(theta),
		pivot.Y-length*math32.Sin(theta),
	)
}
