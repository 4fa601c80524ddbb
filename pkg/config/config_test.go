package config

import (
	"os"
	"testing"
	"time"

	"github.com/itohio/gocrossing/pkg/crossing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, ProfileElaborated, cfg.Crossing.Profile)
	assert.Equal(t, float32(25), cfg.Crossing.MinDistance)
	assert.Equal(t, 9999*time.Millisecond, cfg.Crossing.CrossTime)
	assert.Equal(t, 10, cfg.Crossing.HistorySize)
	assert.Equal(t, 100, cfg.Crossing.DefaultDistance)
	assert.Equal(t, 30*time.Millisecond, cfg.Mock.TickInterval)
	assert.Equal(t, float64(60), cfg.Monitor.WindowSeconds)
}

func TestDefault_MatchesFirmwareConstants(t *testing.T) {
	assert.Equal(t, crossing.DefaultConfig(), Default().Crossing.Controller())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "COM7"
  baud_rate: 115200

crossing:
  min_distance: 30
  cross_time: 8s
  history_size: 5
  echo_timeout: 25ms
  gate_up: 160
  gate_down: 40

monitor:
  window_seconds: 30
  min_window_duration: 500ms

mock:
  tick_interval: 50ms
  clear_distance: 200
  obstacle_distance: 8
  noise_level: 1.5
  obstacle_period: 10s
  obstacle_duration: 2s
  dropout_rate: 0.05
  request_period: 15s
  seed: 42
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, "COM7", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, float32(30), cfg.Crossing.MinDistance)
	assert.Equal(t, 8*time.Second, cfg.Crossing.CrossTime)
	assert.Equal(t, 5, cfg.Crossing.HistorySize)
	assert.Equal(t, 25*time.Millisecond, cfg.Crossing.EchoTimeout)
	assert.Equal(t, 160, cfg.Crossing.GateUp)
	assert.Equal(t, 40, cfg.Crossing.GateDown)
	assert.Equal(t, float64(30), cfg.Monitor.WindowSeconds)
	assert.Equal(t, 500*time.Millisecond, cfg.Monitor.MinWindowDuration)
	assert.Equal(t, 50*time.Millisecond, cfg.Mock.TickInterval)
	assert.Equal(t, float64(200), cfg.Mock.ClearDistance)
	assert.Equal(t, float64(8), cfg.Mock.ObstacleDistance)
	assert.Equal(t, 1.5, cfg.Mock.NoiseLevel)
	assert.Equal(t, 10*time.Second, cfg.Mock.ObstaclePeriod)
	assert.Equal(t, 2*time.Second, cfg.Mock.ObstacleDuration)
	assert.Equal(t, 0.05, cfg.Mock.DropoutRate)
	assert.Equal(t, 15*time.Second, cfg.Mock.RequestPeriod)
	assert.Equal(t, uint64(42), cfg.Mock.Seed)

	ctrl := cfg.Crossing.Controller()
	assert.Equal(t, int64(8000), ctrl.CrossTime)
	assert.Equal(t, float32(30), ctrl.MinDistance)
	assert.Equal(t, 40, ctrl.GateAngle(crossing.GateDown))
}

func TestLoad_InvalidYAML(t *testing.T) {
	name := writeTemp(t, "invalid: yaml: content: [")

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_UnsafeNoEchoDistance(t *testing.T) {
	name := writeTemp(t, `
crossing:
  no_echo_distance: 500
`)

	cfg, err := Load(name)
	assert.ErrorIs(t, err, crossing.ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "/dev/ttyUSB1"
`)

	cfg, err := Load(name)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)                     // default
	assert.Equal(t, 9999*time.Millisecond, cfg.Crossing.CrossTime) // default
	assert.Equal(t, ProfileElaborated, cfg.Crossing.Profile)       // default
}

func TestLoad_SimpleProfile(t *testing.T) {
	name := writeTemp(t, `
crossing:
  profile: simple
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	ctrl := cfg.Crossing.Controller()
	assert.Equal(t, float32(crossing.SimpleMinDistance), ctrl.MinDistance)
	assert.Equal(t, int64(crossing.SimpleCrossTime), ctrl.CrossTime)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Crossing.MinDistance = 40
	cfg.Monitor.WindowSeconds = 15

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, float32(40), loaded.Crossing.MinDistance)
	assert.Equal(t, float64(15), loaded.Monitor.WindowSeconds)
	assert.Equal(t, cfg.Crossing.CrossTime, loaded.Crossing.CrossTime)
}
