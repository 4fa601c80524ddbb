package sensor

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout bounds the wait for an echo pulse. HC-SR04 modules give
	// up after roughly 38ms when nothing reflects.
	DefaultTimeout = 38 * time.Millisecond
	// DefaultSettle is the pause after every measurement so that stray echoes
	// from the previous ping die out.
	DefaultSettle = 30 * time.Millisecond

	triggerClear = 2 * time.Microsecond
	triggerPulse = 10 * time.Microsecond
)

// ErrNoEcho is returned when no echo pulse completes within the timeout.
var ErrNoEcho = errors.New("sensor: no echo")

// OutputPin is a digital output line. machine.Pin satisfies it.
type OutputPin interface {
	High()
	Low()
}

// InputPin is a digital input line. machine.Pin satisfies it.
type InputPin interface {
	Get() bool
}

// Ultrasonic measures distance with a trigger/echo ranging module.
type Ultrasonic struct {
	trigger OutputPin
	echo    InputPin
	settle  time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

// NewUltrasonic creates a ranger on the given pins.
func NewUltrasonic(trigger OutputPin, echo InputPin) *Ultrasonic {
	return &Ultrasonic{
		trigger: trigger,
		echo:    echo,
		settle:  DefaultSettle,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// SetSettle changes the post-measurement delay.
func (u *Ultrasonic) SetSettle(d time.Duration) {
	u.settle = d
}

// Measure fires a ping and returns the distance in centimeters.
// The timeout covers both the wait for the echo to rise and the pulse itself;
// ErrNoEcho is returned when it expires.
func (u *Ultrasonic) Measure(timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	defer u.sleep(u.settle)

	u.trigger.Low()
	u.sleep(triggerClear)
	u.trigger.High()
	u.sleep(triggerPulse)
	u.trigger.Low()

	start := u.now()
	for !u.echo.Get() {
		if u.now().Sub(start) > timeout {
			return 0, ErrNoEcho
		}
	}

	rise := u.now()
	for u.echo.Get() {
		if u.now().Sub(start) > timeout {
			return 0, ErrNoEcho
		}
	}

	return Centimeters(u.now().Sub(rise)), nil
}

// Centimeters converts an echo pulse width to a distance.
// Sound travels 0.034 cm/us and the pulse covers the path twice.
func Centimeters(width time.Duration) int {
	us := width.Microseconds()
	if us <= 0 {
		return 0
	}
	return int(us * 34 / 2000)
}
