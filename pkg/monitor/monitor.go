package monitor

import (
	"sync"
	"time"

	"github.com/itohio/gocrossing/pkg/config"
	"github.com/itohio/gocrossing/pkg/crossing"
	"github.com/itohio/gocrossing/pkg/filter"
	"github.com/itohio/gocrossing/pkg/telemetry"
)

var _ CrossingMonitor = (*Monitor)(nil)

// Sample is a received record annotated with host-side analysis.
type Sample struct {
	telemetry.Record
	Filtered float32 // Distance smoothed the same way the controller does (cm)
	Safe     bool    // Filtered distance clears the safety threshold
}

// Span is a contiguous run of samples sharing a condition.
// Window spans cover active crossing windows, wait spans cover deferred requests.
type Span struct {
	StartIndex int       // Start sample index in buffer
	EndIndex   int       // End sample index in buffer (updated while the span is open)
	StartTime  time.Time // Start timestamp
	EndTime    time.Time // End timestamp (updated while the span is open)
	Open       bool      // The condition still holds on the newest sample
	Alarm      bool      // The buzzer sounded at least once during the span
}

// Duration returns the span length.
func (s Span) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Stats counts crossing events since the monitor was created.
// Counters are not limited to the display window.
type Stats struct {
	Requests    int // Button presses seen
	Granted     int // Crossing windows opened
	Deferred    int // Requests that had to wait for a clear path
	Interrupted int // Windows during which the path became unsafe
	Glitches    int // Windows shorter than the configured minimum
	// NoEcho counts samples at or below the no-echo substitute distance. The
	// line does not mark timeouts, so genuine readings that low count too.
	NoEcho int
}

// CrossingMonitor processes records, maintains buffers, and detects crossing windows.
type CrossingMonitor interface {
	Process(input <-chan telemetry.Record)
	Samples() []Sample                                             // Current buffer, ordered first to last
	Windows() []Span                                               // Crossing windows within the display window
	Waits() []Span                                                 // Deferred-request spans within the display window
	Stats() Stats                                                  // Event counters
	OnUpdate(func(samples []Sample, windows []Span, waits []Span)) // Register callback for updates
}

// Monitor implements CrossingMonitor.
// Samples are removed by timestamp (display window), not by count.
type Monitor struct {
	cfg       crossing.Config
	history   *filter.History
	threshold float32

	mu      sync.RWMutex
	samples []Sample
	windows []Span
	waits   []Span
	stats   Stats

	callbacks []func(samples []Sample, windows []Span, waits []Span)
	cbMu      sync.RWMutex

	windowDuration    time.Duration
	minWindowDuration time.Duration

	// Set when the input channel closes, prevents further callbacks
	shutdown bool
}

// New creates a new Monitor for records produced with cfg's crossing section.
func New(cfg *config.Config) *Monitor {
	cc := cfg.Crossing.Controller()
	return &Monitor{
		cfg:               cc,
		history:           filter.New(cc.HistorySize, cc.DefaultDistance),
		threshold:         cc.MinDistance,
		samples:           make([]Sample, 0),
		windows:           make([]Span, 0),
		waits:             make([]Span, 0),
		windowDuration:    time.Duration(cfg.Monitor.WindowSeconds * float64(time.Second)),
		minWindowDuration: cfg.Monitor.MinWindowDuration,
	}
}

// Config returns the controller constants the monitor interprets records with.
func (m *Monitor) Config() crossing.Config {
	return m.cfg
}

// Process consumes records until the input channel closes. Afterwards no
// more callbacks are sent until ResetShutdown.
func (m *Monitor) Process(input <-chan telemetry.Record) {
	for r := range input {
		m.Add(r)
	}
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// Add processes a single record.
func (m *Monitor) Add(r telemetry.Record) {
	m.mu.Lock()

	filtered := m.history.Push(r.Distance)
	m.samples = append(m.samples, Sample{
		Record:   r,
		Filtered: filtered,
		Safe:     crossing.Safe(filtered, m.threshold),
	})

	m.trim(r.Timestamp)
	m.updateStats(r)
	m.windows = m.track(m.windows, r.CrossState, r.BuzzerState, true)
	m.waits = m.track(m.waits, r.PedState && !r.CrossState, false, false)

	shouldNotify := !m.shutdown
	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks()
	}
}

// trim removes samples that fell out of the display window and shifts span
// indices accordingly.
func (m *Monitor) trim(now time.Time) {
	if m.windowDuration <= 0 {
		return
	}
	cutoff := now.Add(-m.windowDuration)
	cutoffIndex := 0
	for i, s := range m.samples {
		if s.Timestamp.After(cutoff) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex == 0 {
		return
	}

	m.samples = m.samples[cutoffIndex:]
	m.windows = shift(m.windows, cutoffIndex)
	m.waits = shift(m.waits, cutoffIndex)
}

func shift(spans []Span, n int) []Span {
	valid := spans[:0]
	for _, s := range spans {
		s.StartIndex -= n
		s.EndIndex -= n
		if s.EndIndex < 0 {
			continue
		}
		if s.StartIndex < 0 {
			// Partially scrolled out: keep the true start time
			s.StartIndex = 0
		}
		valid = append(valid, s)
	}
	return valid
}

// track extends the open span while cond holds, opens a new one when it
// starts to hold and closes the open one when it stops.
func (m *Monitor) track(spans []Span, cond, alarm, filterShort bool) []Span {
	last := len(m.samples) - 1
	ts := m.samples[last].Timestamp

	var open *Span
	if n := len(spans); n > 0 && spans[n-1].Open {
		open = &spans[n-1]
	}

	switch {
	case cond && open != nil:
		open.EndIndex = last
		open.EndTime = ts
		open.Alarm = open.Alarm || alarm
	case cond:
		spans = append(spans, Span{
			StartIndex: last,
			EndIndex:   last,
			StartTime:  ts,
			EndTime:    ts,
			Open:       true,
			Alarm:      alarm,
		})
	case open != nil:
		open.Open = false
		if filterShort && open.Duration() < m.minWindowDuration {
			m.stats.Glitches++
			spans = spans[:len(spans)-1]
		} else if open.Alarm {
			m.stats.Interrupted++
		}
	}
	return spans
}

func (m *Monitor) updateStats(r telemetry.Record) {
	var prev telemetry.Record
	if n := len(m.samples); n > 1 {
		prev = m.samples[n-2].Record
	}

	if r.Pressed {
		m.stats.Requests++
	}
	if r.CrossState && !prev.CrossState {
		m.stats.Granted++
	}
	if r.PedState && !r.CrossState && !(prev.PedState && !prev.CrossState) {
		m.stats.Deferred++
	}
	if r.Distance <= m.cfg.NoEchoDistance {
		m.stats.NoEcho++
	}
}

// Samples returns a copy of the current samples buffer.
func (m *Monitor) Samples() []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Sample, len(m.samples))
	copy(result, m.samples)
	return result
}

// Windows returns a copy of the detected crossing windows.
func (m *Monitor) Windows() []Span {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Span, len(m.windows))
	copy(result, m.windows)
	return result
}

// Waits returns a copy of the detected deferred-request spans.
func (m *Monitor) Waits() []Span {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Span, len(m.waits))
	copy(result, m.waits)
	return result
}

// Stats returns the event counters.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Latest returns the newest sample, if any.
func (m *Monitor) Latest() (Sample, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.samples) == 0 {
		return Sample{}, false
	}
	return m.samples[len(m.samples)-1], true
}

// OnUpdate registers a callback function that will be called for every record.
// The callback should copy data quickly and return as fast as possible.
func (m *Monitor) OnUpdate(callback func(samples []Sample, windows []Span, waits []Span)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown allows callbacks to be sent again.
// Call it before processing records from a new connection.
func (m *Monitor) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with copies of the current data.
func (m *Monitor) notifyCallbacks() {
	samples := m.Samples()
	windows := m.Windows()
	waits := m.Waits()

	m.cbMu.RLock()
	callbacks := make([]func(samples []Sample, windows []Span, waits []Span), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samples, windows, waits)
		}
	}
}
