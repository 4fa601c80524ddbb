package panel

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gocrossing/pkg/segment"
)

var (
	background = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	housing    = color.RGBA{R: 45, G: 45, B: 45, A: 255}
	unlit      = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	redOn      = color.RGBA{R: 230, G: 30, B: 30, A: 255}
	yellowOn   = color.RGBA{R: 250, G: 200, B: 0, A: 255}
	greenOn    = color.RGBA{R: 30, G: 210, B: 60, A: 255}
	buzzerOn   = color.RGBA{R: 255, G: 120, B: 0, A: 255}
	segmentOn  = color.RGBA{R: 255, G: 40, B: 40, A: 255}
	segmentOff = color.RGBA{R: 50, G: 20, B: 20, A: 255}
	armStripe  = color.RGBA{R: 240, G: 240, B: 240, A: 255}
)

// segmentRect is a segment position in a unit digit cell of 1x2.
type segmentRect struct {
	x, y, w, h float32
}

// Segment thickness relative to the digit width.
const thick = 0.18

var segmentLayout = [segment.Count]segmentRect{
	segment.A: {thick, 0, 1 - 2*thick, thick},
	segment.B: {1 - thick, thick, thick, 1 - 1.5*thick},
	segment.C: {1 - thick, 1 + thick/2, thick, 1 - 1.5*thick},
	segment.D: {thick, 2 - thick, 1 - 2*thick, thick},
	segment.E: {0, 1 + thick/2, thick, 1 - 1.5*thick},
	segment.F: {0, thick, thick, 1 - 1.5*thick},
	segment.G: {thick, 1 - thick/2, 1 - 2*thick, thick},
}

type panelRenderer struct {
	panel *PanelWidget

	bg       *canvas.Rectangle
	head     *canvas.Rectangle
	red      *canvas.Circle
	yellow   *canvas.Circle
	green    *canvas.Circle
	buzzer   *canvas.Circle
	buzzText *canvas.Text
	post     *canvas.Rectangle
	arm      *canvas.Line
	digitBox *canvas.Rectangle
	segments [segment.Count]*canvas.Rectangle

	objects []fyne.CanvasObject
}

func newRenderer(p *PanelWidget) *panelRenderer {
	r := &panelRenderer{
		panel:    p,
		bg:       canvas.NewRectangle(background),
		head:     canvas.NewRectangle(housing),
		red:      canvas.NewCircle(unlit),
		yellow:   canvas.NewCircle(unlit),
		green:    canvas.NewCircle(unlit),
		buzzer:   canvas.NewCircle(unlit),
		buzzText: canvas.NewText("buzzer", unlit),
		post:     canvas.NewRectangle(housing),
		arm:      canvas.NewLine(armStripe),
		digitBox: canvas.NewRectangle(color.Black),
	}
	r.buzzText.TextSize = 11
	r.head.CornerRadius = 6

	r.objects = []fyne.CanvasObject{r.bg, r.head, r.red, r.yellow, r.green, r.buzzer, r.buzzText, r.post, r.arm, r.digitBox}
	for i := range r.segments {
		r.segments[i] = canvas.NewRectangle(segmentOff)
		r.objects = append(r.objects, r.segments[i])
	}
	return r
}

// MinSize returns the minimum size of the widget.
func (r *panelRenderer) MinSize() fyne.Size {
	return fyne.NewSize(360, 180)
}

// Layout arranges the static parts. The gate arm depends on state and is
// positioned in Refresh.
func (r *panelRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	unit := min(size.Height/6, size.Width/12)
	lamp := unit * 1.4

	// Traffic light head
	r.head.Move(fyne.NewPos(unit, unit*0.5))
	r.head.Resize(fyne.NewSize(lamp+unit*0.6, lamp*3+unit*1.2))
	for i, c := range []*canvas.Circle{r.red, r.yellow, r.green} {
		c.Move(fyne.NewPos(unit*1.3, unit*0.8+float32(i)*(lamp+unit*0.3)))
		c.Resize(fyne.NewSize(lamp, lamp))
	}

	// Buzzer
	buzzX := unit * 4
	r.buzzer.Move(fyne.NewPos(buzzX, unit*0.8))
	r.buzzer.Resize(fyne.NewSize(unit, unit))
	r.buzzText.Move(fyne.NewPos(buzzX-unit*0.2, unit*1.9))

	// Gate post
	r.post.Move(fyne.NewPos(unit*4.2, size.Height-unit*2.5))
	r.post.Resize(fyne.NewSize(unit*0.6, unit*2))

	// Countdown digit
	digitW := unit * 1.6
	digitX := size.Width - digitW - unit*1.5
	digitY := unit * 0.8
	r.digitBox.Move(fyne.NewPos(digitX-unit*0.3, digitY-unit*0.3))
	r.digitBox.Resize(fyne.NewSize(digitW+unit*0.6, digitW*2+unit*0.6))
	for i, rect := range segmentLayout {
		s := r.segments[i]
		s.Move(fyne.NewPos(digitX+rect.x*digitW, digitY+rect.y*digitW))
		s.Resize(fyne.NewSize(rect.w*digitW, rect.h*digitW))
	}

	r.layoutArm(size)
}

func (r *panelRenderer) layoutArm(size fyne.Size) {
	unit := min(size.Height/6, size.Width/12)
	pivot := fyne.NewPos(unit*4.5, size.Height-unit*2.5)
	length := size.Width - pivot.X - unit*4.5

	cmd, _ := r.panel.Commands()
	cfg := r.panel.cfg
	r.arm.Position1 = pivot
	r.arm.Position2 = armEnd(pivot, length, cfg.GateAngle(cmd.Gate), cfg.GateDown, cfg.GateUp)
	r.arm.StrokeWidth = unit * 0.3
}

// Refresh updates colors from the current outputs.
func (r *panelRenderer) Refresh() {
	cmd, connected := r.panel.Commands()

	set := func(c *canvas.Circle, on bool, lit color.Color) {
		if on && connected {
			c.FillColor = lit
		} else {
			c.FillColor = unlit
		}
		c.Refresh()
	}
	set(r.red, cmd.Red, redOn)
	set(r.yellow, cmd.Yellow, yellowOn)
	set(r.green, cmd.Green, greenOn)
	set(r.buzzer, cmd.Buzzer, buzzerOn)

	glyph := segment.Lookup(cmd.Display)
	for i, s := range r.segments {
		if glyph[i] && connected {
			s.FillColor = segmentOn
		} else {
			s.FillColor = segmentOff
		}
		s.Refresh()
	}

	r.layoutArm(r.panel.Size())
	r.arm.Refresh()
}

// Objects returns all canvas objects for rendering.
func (r *panelRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *panelRenderer) Destroy() {}
