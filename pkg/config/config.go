package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/gocrossing/pkg/crossing"
	"gopkg.in/yaml.v3"
)

// Profile names accepted in the crossing section.
const (
	ProfileElaborated = "elaborated"
	ProfileSimple     = "simple"
)

// Config represents the host application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Crossing CrossingConfig `yaml:"crossing"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// CrossingConfig mirrors the controller constants compiled into the firmware.
// The host needs them to interpret diagnostic lines and to run the mock.
type CrossingConfig struct {
	Profile         string        `yaml:"profile"`          // elaborated or simple
	MinDistance     float32       `yaml:"min_distance"`     // Safety threshold (cm)
	CrossTime       time.Duration `yaml:"cross_time"`       // Crossing window length
	HistorySize     int           `yaml:"history_size"`     // Samples averaged by the filter
	DefaultDistance int           `yaml:"default_distance"` // Initial filter content (cm)
	NoEchoDistance  int           `yaml:"no_echo_distance"` // Sample used when the sensor times out (cm)
	EchoTimeout     time.Duration `yaml:"echo_timeout"`
	GateUp          int           `yaml:"gate_up"`   // Servo angle (deg)
	GateDown        int           `yaml:"gate_down"` // Servo angle (deg)
}

// MonitorConfig contains parameters of the host-side record analysis.
type MonitorConfig struct {
	WindowSeconds     float64       `yaml:"window_seconds"`      // History kept for display
	MinWindowDuration time.Duration `yaml:"min_window_duration"` // Shorter crossing windows are reported as glitches
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	TickInterval     time.Duration `yaml:"tick_interval"`     // Control loop period
	ClearDistance    float64       `yaml:"clear_distance"`    // Distance reading with an empty crossing (cm)
	ObstacleDistance float64       `yaml:"obstacle_distance"` // Distance reading while something blocks the path (cm)
	NoiseLevel       float64       `yaml:"noise_level"`       // Uniform noise amplitude (cm)
	ObstaclePeriod   time.Duration `yaml:"obstacle_period"`   // Time between obstacles (0 = never)
	ObstacleDuration time.Duration `yaml:"obstacle_duration"` // How long an obstacle stays
	DropoutRate      float64       `yaml:"dropout_rate"`      // Probability of a missing echo per ping
	RequestPeriod    time.Duration `yaml:"request_period"`    // Automatic button presses (0 = manual only)
	Seed             uint64        `yaml:"seed"`              // Noise seed (0 = time based)
}

// Default returns a default configuration matching the firmware constants.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0", // "COM3" on Windows
			BaudRate: 9600,
		},
		Crossing: CrossingConfig{
			Profile:         ProfileElaborated,
			MinDistance:     crossing.DefaultMinDistance,
			CrossTime:       crossing.DefaultCrossTime * time.Millisecond,
			HistorySize:     10,
			DefaultDistance: 100,
			NoEchoDistance:  0,
			EchoTimeout:     38 * time.Millisecond,
			GateUp:          crossing.DefaultGateUp,
			GateDown:        crossing.DefaultGateDown,
		},
		Monitor: MonitorConfig{
			WindowSeconds:     60,
			MinWindowDuration: time.Second,
		},
		Mock: MockConfig{
			TickInterval:     30 * time.Millisecond, // Settle delay of the ranger
			ClearDistance:    120,
			ObstacleDistance: 12,
			NoiseLevel:       4,
			ObstaclePeriod:   25 * time.Second,
			ObstacleDuration: 3 * time.Second,
			DropoutRate:      0.01,
			RequestPeriod:    0,
			Seed:             0,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Crossing.Controller().Validate(); err != nil {
		return nil, fmt.Errorf("invalid crossing section: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Controller converts the crossing section to controller constants.
// The simple profile overrides the threshold and the window length.
func (c CrossingConfig) Controller() crossing.Config {
	cfg := crossing.Config{
		MinDistance:     c.MinDistance,
		CrossTime:       c.CrossTime.Milliseconds(),
		HistorySize:     c.HistorySize,
		DefaultDistance: c.DefaultDistance,
		NoEchoDistance:  c.NoEchoDistance,
		EchoTimeout:     c.EchoTimeout,
		GateUp:          c.GateUp,
		GateDown:        c.GateDown,
	}
	if c.Profile == ProfileSimple {
		cfg.MinDistance = crossing.SimpleMinDistance
		cfg.CrossTime = crossing.SimpleCrossTime
	}
	return cfg
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Crossing.Profile == "" {
		c.Crossing.Profile = def.Crossing.Profile
	}
	if c.Crossing.MinDistance == 0 {
		c.Crossing.MinDistance = def.Crossing.MinDistance
	}
	if c.Crossing.CrossTime == 0 {
		c.Crossing.CrossTime = def.Crossing.CrossTime
	}
	if c.Crossing.HistorySize == 0 {
		c.Crossing.HistorySize = def.Crossing.HistorySize
	}
	if c.Crossing.DefaultDistance == 0 {
		c.Crossing.DefaultDistance = def.Crossing.DefaultDistance
	}
	if c.Crossing.EchoTimeout == 0 {
		c.Crossing.EchoTimeout = def.Crossing.EchoTimeout
	}
	if c.Crossing.GateUp == 0 {
		c.Crossing.GateUp = def.Crossing.GateUp
	}
	if c.Crossing.GateDown == 0 {
		c.Crossing.GateDown = def.Crossing.GateDown
	}

	if c.Monitor.WindowSeconds == 0 {
		c.Monitor.WindowSeconds = def.Monitor.WindowSeconds
	}

	if c.Mock.TickInterval == 0 {
		c.Mock.TickInterval = def.Mock.TickInterval
	}
	if c.Mock.ClearDistance == 0 {
		c.Mock.ClearDistance = def.Mock.ClearDistance
	}
	if c.Mock.ObstacleDuration == 0 {
		c.Mock.ObstacleDuration = def.Mock.ObstacleDuration
	}
}
