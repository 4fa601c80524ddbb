package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocrossing/pkg/config"
	"github.com/itohio/gocrossing/pkg/monitor"
)

// minRange keeps the Y axis readable when the path has been clear for a while.
const minRange = 50.0

// ScopeWidget is a custom Fyne widget that plots distance readings over time.
type ScopeWidget struct {
	widget.BaseWidget

	cfg       *config.Config
	threshold float64

	// Data (protected by mu)
	mu      sync.RWMutex
	samples []monitor.Sample
	windows []monitor.Span
	waits   []monitor.Span

	// Display buffer (reused for downsampling)
	displaySamples []monitor.Sample

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax time.Time

	// Display settings
	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:              cfg,
		threshold:        float64(cfg.Crossing.Controller().MinDistance),
		samples:          make([]monitor.Sample, 0),
		windows:          make([]monitor.Span, 0),
		waits:            make([]monitor.Span, 0),
		displaySamples:   make([]monitor.Sample, 0, 1000),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	s.ExtendBaseWidget(s)
	s.updateAutoScale()
	s.Refresh()
	return s
}

// UpdateData updates the widget with new monitor data.
// This should be called from the monitor callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []monitor.Sample, windows, waits []monitor.Span) {
	s.mu.Lock()

	s.displaySamples = monitor.Downsample(s.displaySamples, samples, s.maxDisplayPoints)
	s.samples = samples
	s.windows = windows
	s.waits = waits

	s.updateAutoScale()

	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// updateAutoScale calculates axis ranges from current data.
// The Y axis always starts at zero and always includes the threshold.
func (s *ScopeWidget) updateAutoScale() {
	window := time.Duration(s.cfg.Monitor.WindowSeconds * float64(time.Second))

	s.yMin = 0
	s.yMax = max(s.threshold*2, minRange)
	if len(s.displaySamples) == 0 {
		s.xMin = time.Now()
		s.xMax = s.xMin.Add(window)
		return
	}

	for _, sample := range s.displaySamples {
		s.yMax = max(s.yMax, float64(sample.Distance), float64(sample.Filtered))
	}
	s.yMax *= 1.1

	s.xMin = s.displaySamples[0].Timestamp
	s.xMax = s.displaySamples[len(s.displaySamples)-1].Timestamp
	// Ensure minimum window
	if s.xMax.Sub(s.xMin) < window {
		s.xMax = s.xMin.Add(window)
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
