// Package sim provides simulated controller collaborators for development
// and tests without hardware.
package sim

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/itohio/gocrossing/pkg/config"
	"github.com/itohio/gocrossing/pkg/crossing"
	"github.com/itohio/gocrossing/pkg/sensor"
)

// MaxRange is the furthest distance the simulated module can see (cm).
// Anything beyond it produces no echo.
const MaxRange = 400

// Scene simulates the ranger looking across the crossing. The path is clear
// except for periodic obstacles and whatever is placed with SetBlocked.
type Scene struct {
	cfg   config.MockConfig
	clock crossing.Clock

	mu      sync.Mutex
	rng     *rand.Rand
	blocked bool
}

var _ crossing.Ranger = (*Scene)(nil)

// NewScene creates a scene driven by clock. A zero seed is replaced with the
// current time.
func NewScene(cfg *config.MockConfig, clock crossing.Clock) *Scene {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Scene{
		cfg:   *cfg,
		clock: clock,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SetBlocked places or removes a manual obstacle in the crossing path.
func (s *Scene) SetBlocked(blocked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked = blocked
}

// Blocked reports whether the path is blocked at now (ms).
func (s *Scene) Blocked(now int64) bool {
	s.mu.Lock()
	manual := s.blocked
	s.mu.Unlock()
	if manual {
		return true
	}

	period := s.cfg.ObstaclePeriod.Milliseconds()
	if period <= 0 || now < period {
		return false
	}
	return now%period < s.cfg.ObstacleDuration.Milliseconds()
}

// Measure implements crossing.Ranger. The timeout is ignored: the scene
// answers immediately.
func (s *Scene) Measure(time.Duration) (int, error) {
	now := s.clock.Millis()
	base := s.cfg.ClearDistance
	if s.Blocked(now) {
		base = s.cfg.ObstacleDistance
	}

	s.mu.Lock()
	dropout := s.cfg.DropoutRate > 0 && s.rng.Float64() < s.cfg.DropoutRate
	noise := (s.rng.Float64()*2 - 1) * s.cfg.NoiseLevel
	s.mu.Unlock()

	if dropout {
		return 0, sensor.ErrNoEcho
	}

	d := int(base + noise)
	if d < 0 {
		d = 0
	}
	if d > MaxRange {
		return 0, sensor.ErrNoEcho
	}
	return d, nil
}
