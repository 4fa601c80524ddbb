package crossing

import "github.com/itohio/gocrossing/pkg/filter"

// Tick is the outcome of one control loop pass.
type Tick struct {
	Pressed  bool    // Request input read pressed
	Raw      int     // Raw sample fed to the filter (cm)
	NoEcho   bool    // The ranger timed out and Raw is the substitute value
	Filtered float32 // Filtered distance (cm)
	State    State
	Commands Commands
}

// Controller runs the read-filter-decide-act loop against its collaborators.
// It is not safe for concurrent use.
type Controller struct {
	cfg       Config
	ranger    Ranger
	button    Button
	actuators Actuators
	clock     Clock

	history *filter.History
	state   State

	// Logf receives actuator and sensor faults. Nil discards them.
	Logf func(format string, args ...any)
}

// New creates a controller in its power-on state.
func New(cfg Config, ranger Ranger, button Button, actuators Actuators, clock Clock) *Controller {
	return &Controller{
		cfg:       cfg,
		ranger:    ranger,
		button:    button,
		actuators: actuators,
		clock:     clock,
		history:   filter.New(cfg.HistorySize, cfg.DefaultDistance),
		state:     NewState(cfg),
	}
}

// State returns the state after the last tick.
func (c *Controller) State() State {
	return c.state
}

// Config returns the controller constants.
func (c *Controller) Config() Config {
	return c.cfg
}

// Tick runs one full control loop pass and drives every output.
func (c *Controller) Tick() Tick {
	pressed := c.button.Requested()

	raw, err := c.ranger.Measure(c.cfg.EchoTimeout)
	noEcho := false
	if err != nil {
		// A failed read must never look like a clear crossing.
		raw = c.cfg.NoEchoDistance
		noEcho = true
		c.logf("distance read failed: %v", err)
	}
	filtered := c.history.Push(raw)

	c.state = Step(c.cfg, c.state, Inputs{
		Requested: pressed,
		Distance:  filtered,
		Now:       c.clock.Millis(),
	})

	cmd := Map(c.state)
	if err := cmd.Apply(c.actuators); err != nil {
		c.logf("actuator write failed: %v", err)
	}

	return Tick{
		Pressed:  pressed,
		Raw:      raw,
		NoEcho:   noEcho,
		Filtered: filtered,
		State:    c.state,
		Commands: cmd,
	}
}

// Run ticks until stop returns true. A nil stop runs forever.
func (c *Controller) Run(stop func() bool, each func(Tick)) {
	for stop == nil || !stop() {
		t := c.Tick()
		if each != nil {
			each(t)
		}
	}
}

func (c *Controller) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}
