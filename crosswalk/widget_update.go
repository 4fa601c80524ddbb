package main

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/itohio/gocrossing/pkg/monitor"
)

// updateInterval limits widget refreshes to ~60 FPS.
const updateInterval = 16 * time.Millisecond

// throttle limits widget refreshes to one per updateInterval. An update that
// arrives too soon is held and run once the interval has passed, so the
// newest state is always drawn.
type throttle struct {
	mu      sync.Mutex
	last    time.Time
	pending func()
	armed   bool

	// after schedules f once d has passed; nil uses time.AfterFunc.
	after func(d time.Duration, f func())
	// run executes an update; nil uses UpdateWidgetOnMainThread.
	run func(update func())
}

// Do runs update if the interval has passed since the last one, otherwise
// holds it for a trailing run. A held update replaces any earlier one.
func (t *throttle) Do(now time.Time, update func()) {
	t.mu.Lock()
	wait := updateInterval - now.Sub(t.last)
	if wait <= 0 {
		t.last = now
		t.pending = nil
		t.mu.Unlock()
		t.exec(update)
		return
	}

	t.pending = update
	schedule := !t.armed
	t.armed = true
	t.mu.Unlock()

	if !schedule {
		return
	}
	if t.after != nil {
		t.after(wait, t.trailing)
		return
	}
	time.AfterFunc(wait, t.trailing)
}

// Flush runs the held update, if any, on the calling goroutine.
func (t *throttle) Flush() {
	t.mu.Lock()
	update := t.pending
	t.pending = nil
	t.mu.Unlock()

	if update != nil {
		update()
	}
}

func (t *throttle) trailing() {
	t.mu.Lock()
	update := t.pending
	t.pending = nil
	t.armed = false
	if update != nil {
		t.last = time.Now()
	}
	t.mu.Unlock()

	if update != nil {
		t.exec(update)
	}
}

func (t *throttle) exec(update func()) {
	if t.run != nil {
		t.run(update)
		return
	}
	UpdateWidgetOnMainThread(update)
}

// UpdateWidgetOnMainThread schedules a widget update function to run on the main Fyne thread.
// Fyne widgets cannot be updated directly from goroutines.
func UpdateWidgetOnMainThread(callback func()) {
	if callback == nil {
		return
	}
	fyne.Do(callback)
}

// newMonitor creates a monitor for the current configuration and connects
// it to the widgets.
func newMonitor(state *appState) *monitor.Monitor {
	m := monitor.New(state.cfg)
	ctrl := m.Config()

	m.OnUpdate(func(samples []monitor.Sample, windows []monitor.Span, waits []monitor.Span) {
		if len(samples) == 0 {
			return
		}

		latest := samples[len(samples)-1]
		cmd := latest.Commands(ctrl)
		status := statusText(latest, m.Stats())

		// Scope widget handles downsampling internally, so pass full data
		state.throttle.Do(time.Now(), func() {
			state.scopeWidget.UpdateData(samples, windows, waits)
			if state.device == nil {
				// Disconnected while queued; panel and status already say so.
				return
			}
			state.panelWidget.Update(cmd)
			state.status.SetText(status)
		})
	})
	return m
}

// statusText summarizes the newest sample and the event counters.
func statusText(s monitor.Sample, stats monitor.Stats) string {
	phase := "idle"
	switch {
	case s.CrossState && s.BuzzerState:
		phase = "CROSSING - path blocked"
	case s.CrossState:
		phase = fmt.Sprintf("crossing, %.1fs left", float64(s.CrossTimer)/1000)
	case s.PedState:
		phase = "waiting for a clear path"
	}
	return fmt.Sprintf("%s | distance %d cm (filtered %.0f) | requests %d, granted %d, deferred %d, interrupted %d",
		phase, s.Distance, s.Filtered, stats.Requests, stats.Granted, stats.Deferred, stats.Interrupted)
}
