package panel

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/itohio/gocrossing/pkg/crossing"
	"github.com/itohio/gocrossing/pkg/segment"
	"github.com/stretchr/testify/assert"
)

func TestArmEnd(t *testing.T) {
	pivot := fyne.NewPos(10, 100)
	cfg := crossing.DefaultConfig()

	down := armEnd(pivot, 50, cfg.GateAngle(crossing.GateDown), cfg.GateDown, cfg.GateUp)
	assert.InDelta(t, 60, down.X, 1e-3)
	assert.InDelta(t, 100, down.Y, 1e-3)

	up := armEnd(pivot, 50, cfg.GateAngle(crossing.GateUp), cfg.GateDown, cfg.GateUp)
	assert.InDelta(t, 10, up.X, 1e-3)
	assert.InDelta(t, 50, up.Y, 1e-3)

	// Degenerate calibration keeps the arm horizontal.
	flat := armEnd(pivot, 50, 90, 90, 90)
	assert.InDelta(t, 60, flat.X, 1e-3)
}

func TestPanelWidget_Update(t *testing.T) {
	test.NewTempApp(t)

	p := New(crossing.DefaultConfig())
	cmd, connected := p.Commands()
	assert.False(t, connected)
	assert.Equal(t, segment.Blank, cmd.Display)

	want := crossing.Commands{Yellow: true, Green: true, Gate: crossing.GateDown, Display: 7}
	p.Update(want)
	cmd, connected = p.Commands()
	assert.True(t, connected)
	assert.Equal(t, want, cmd)

	p.Disconnect()
	_, connected = p.Commands()
	assert.False(t, connected)
}

func TestPanelRenderer_Colors(t *testing.T) {
	test.NewTempApp(t)

	p := New(crossing.DefaultConfig())
	p.Resize(fyne.NewSize(360, 180))
	r := newRenderer(p)
	r.Layout(p.Size())

	p.Update(crossing.Commands{Red: true, Buzzer: true, Gate: crossing.GateUp, Display: 1})
	r.Refresh()

	assert.Equal(t, redOn, r.red.FillColor)
	assert.Equal(t, unlit, r.green.FillColor)
	assert.Equal(t, buzzerOn, r.buzzer.FillColor)

	glyph := segment.Lookup(1)
	for i, s := range r.segments {
		if glyph[i] {
			assert.Equal(t, segmentOn, s.FillColor, "segment %d", i)
		} else {
			assert.Equal(t, segmentOff, s.FillColor, "segment %d", i)
		}
	}

	// Arm points up when the gate is open.
	assert.Less(t, r.arm.Position2.Y, r.arm.Position1.Y)

	p.Disconnect()
	r.Refresh()
	assert.Equal(t, unlit, r.red.FillColor)
}
