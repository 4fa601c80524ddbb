package scope

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gocrossing/pkg/monitor"
)

var (
	gridColor      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	rawColor       = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	filteredColor  = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
	thresholdColor = color.RGBA{R: 220, G: 50, B: 50, A: 255}
	windowColor    = color.RGBA{R: 40, G: 160, B: 60, A: 60}
	alarmColor     = color.RGBA{R: 200, G: 40, B: 40, A: 60}
	waitColor      = color.RGBA{R: 220, G: 180, B: 0, A: 50}
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// plot maps data coordinates into the drawing area.
type plot struct {
	x, y, w, h float32
	yMin, yMax float64
	xMin, xMax time.Time
}

func (p plot) px(t time.Time) float32 {
	return p.x + float32(t.Sub(p.xMin).Seconds()/p.xMax.Sub(p.xMin).Seconds())*p.w
}

func (p plot) py(v float64) float32 {
	return p.y + p.h - float32((v-p.yMin)/(p.yMax-p.yMin))*p.h
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 250)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	all := r.scope.samples
	windows := r.scope.windows
	waits := r.scope.waits
	threshold := r.scope.threshold
	p := plot{
		yMin: r.scope.yMin,
		yMax: r.scope.yMax,
		xMin: r.scope.xMin,
		xMax: r.scope.xMax,
	}
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	// Clear old objects (but keep grid)
	r.objects = []fyne.CanvasObject{r.grid}

	const (
		marginLeft   = 50
		marginRight  = 20
		marginTop    = 20
		marginBottom = 30
	)
	p.x, p.y = marginLeft, marginTop
	p.w = size.Width - marginLeft - marginRight
	p.h = size.Height - marginTop - marginBottom

	// Spans go first so the curves are drawn over them.
	r.drawSpans(p, all, waits, func(monitor.Span) color.Color { return waitColor })
	r.drawSpans(p, all, windows, func(s monitor.Span) color.Color {
		if s.Alarm {
			return alarmColor
		}
		return windowColor
	})
	r.drawGrid(p)
	r.drawThreshold(p, threshold)

	if len(samples) > 1 {
		r.drawCurve(p, samples, rawColor, 1.5, func(s monitor.Sample) float64 { return float64(s.Distance) })
		r.drawCurve(p, samples, filteredColor, 2.5, func(s monitor.Sample) float64 { return float64(s.Filtered) })
	}

	if len(all) > 0 {
		r.drawStatus(p, all[len(all)-1])
	}
}

// drawGrid draws the oscilloscope-style grid.
func (r *scopeRenderer) drawGrid(p plot) {
	numHLines := 5
	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.h/float32(numHLines)
		r.line(gridColor, 1, p.x, y, p.x+p.w, y)

		value := p.yMax - float64(i)*(p.yMax-p.yMin)/float64(numHLines)
		r.text(formatDistance(value), labelColor, 10, fyne.TextAlignTrailing, p.x-5, y-6)
	}

	numVLines := 10
	span := p.xMax.Sub(p.xMin)
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/float32(numVLines)
		r.line(gridColor, 1, x, p.y, x, p.y+p.h)

		offset := span * time.Duration(i) / time.Duration(numVLines)
		r.text(formatTime(offset), labelColor, 10, fyne.TextAlignCenter, x-20, p.y+p.h+5)
	}
}

// drawThreshold draws the safety threshold as a horizontal line.
func (r *scopeRenderer) drawThreshold(p plot, threshold float64) {
	y := p.py(threshold)
	r.line(thresholdColor, 1, p.x, y, p.x+p.w, y)
	r.text("min "+formatDistance(threshold), thresholdColor, 10, fyne.TextAlignLeading, p.x+5, y-14)
}

// drawCurve draws one series as connected line segments.
func (r *scopeRenderer) drawCurve(p plot, samples []monitor.Sample, c color.Color, width float32, value func(monitor.Sample) float64) {
	prev := fyne.NewPos(p.px(samples[0].Timestamp), p.py(value(samples[0])))
	for _, s := range samples[1:] {
		pos := fyne.NewPos(p.px(s.Timestamp), p.py(value(s)))
		line := canvas.NewLine(c)
		line.Position1 = prev
		line.Position2 = pos
		line.StrokeWidth = width
		r.objects = append(r.objects, line)
		prev = pos
	}
}

// drawSpans shades the time ranges of spans.
func (r *scopeRenderer) drawSpans(p plot, samples []monitor.Sample, spans []monitor.Span, fill func(monitor.Span) color.Color) {
	for _, span := range spans {
		if span.StartIndex < 0 || span.EndIndex >= len(samples) || span.StartIndex > span.EndIndex {
			continue
		}
		x0 := max(p.px(samples[span.StartIndex].Timestamp), p.x)
		x1 := p.px(samples[span.EndIndex].Timestamp)

		rect := canvas.NewRectangle(fill(span))
		rect.Move(fyne.NewPos(x0, p.y))
		rect.Resize(fyne.NewSize(max(x1-x0, 1), p.h))
		r.objects = append(r.objects, rect)
	}
}

// drawStatus prints the newest readings in the top left corner.
func (r *scopeRenderer) drawStatus(p plot, s monitor.Sample) {
	status := "raw " + strconv.Itoa(s.Distance) + " cm  filtered " + formatDistance(float64(s.Filtered))
	if s.CrossState {
		status += "  crossing " + formatTime(time.Duration(s.CrossTimer)*time.Millisecond)
	}
	r.text(status, color.RGBA{R: 200, G: 200, B: 200, A: 255}, 11, fyne.TextAlignLeading, p.x+10, p.y+5)
}

func (r *scopeRenderer) line(c color.Color, width, x1, y1, x2, y2 float32) {
	line := canvas.NewLine(c)
	line.Position1 = fyne.NewPos(x1, y1)
	line.Position2 = fyne.NewPos(x2, y2)
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *scopeRenderer) text(s string, c color.Color, size float32, align fyne.TextAlign, x, y float32) {
	text := canvas.NewText(s, c)
	text.TextSize = size
	text.Alignment = align
	text.Move(fyne.NewPos(x, y))
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func formatDistance(cm float64) string {
	return strconv.FormatFloat(cm, 'f', 0, 64) + " cm"
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}
