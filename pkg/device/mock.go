package device

import (
	"context"
	"sync"
	"time"

	"github.com/itohio/gocrossing/pkg/config"
	"github.com/itohio/gocrossing/pkg/crossing"
	"github.com/itohio/gocrossing/pkg/sim"
	"github.com/itohio/gocrossing/pkg/telemetry"
)

// Mock runs a real controller against simulated hardware.
type Mock struct {
	cfg *config.Config

	records   chan telemetry.Record
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	clock     crossing.Clock
	button    *sim.Button
	scene     *sim.Scene
	actuators *sim.Actuators
	ctrl      *crossing.Controller

	lastRequest time.Time
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		records:   make(chan telemetry.Record, DefaultBufferSize),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		button:    &sim.Button{},
		actuators: sim.NewActuators(),
	}
}

// Connect powers up the simulated controller.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	start := time.Now()
	m.clock = crossing.SinceClock(start)
	m.scene = sim.NewScene(&m.cfg.Mock, m.clock)
	m.ctrl = crossing.New(m.cfg.Crossing.Controller(), m.scene, m.button, m.actuators, m.clock)
	m.lastRequest = start
	m.connected = true

	go m.run()

	return nil
}

// Close stops the simulated controller and closes the records channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.connected = false
	m.cancel()
	m.mu.Unlock()

	<-m.done
	return nil
}

// Records returns the channel for reading records.
func (m *Mock) Records() <-chan telemetry.Record {
	return m.records
}

// Request presses the simulated button.
func (m *Mock) Request() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return ErrNotConnected
	}
	m.button.Press()
	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// SetBlocked places or removes an obstacle in the simulated crossing path.
func (m *Mock) SetBlocked(blocked bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return ErrNotConnected
	}
	m.scene.SetBlocked(blocked)
	return nil
}

// Outputs returns the last commands written to the simulated actuators.
func (m *Mock) Outputs() crossing.Commands {
	return m.actuators.Last()
}

// run ticks the controller until the context is cancelled.
func (m *Mock) run() {
	defer close(m.done)
	defer close(m.records)

	interval := m.cfg.Mock.TickInterval
	if interval <= 0 {
		interval = config.Default().Mock.TickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			if p := m.cfg.Mock.RequestPeriod; p > 0 && now.Sub(m.lastRequest) >= p {
				m.button.Press()
				m.lastRequest = now
			}

			record := telemetry.FromTick(m.ctrl.Tick())
			record.Timestamp = now

			select {
			case m.records <- record:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}
