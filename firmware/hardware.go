package main

import (
	"machine"

	"github.com/itohio/gocrossing/pkg/crossing"
	"github.com/itohio/gocrossing/pkg/segment"
	"tinygo.org/x/drivers/servo"
)

// button reads the active-low request input and remote requests received on
// the UART ("P\n").
type button struct {
	pin  machine.Pin
	uart *machine.UART

	line   [8]byte
	pos    int
	remote bool
}

func newButton(pin machine.Pin, uart *machine.UART) *button {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &button{pin: pin, uart: uart}
}

// Requested implements crossing.Button.
func (b *button) Requested() bool {
	b.poll()
	pressed := !b.pin.Get() || b.remote
	b.remote = false
	return pressed
}

// poll consumes buffered UART bytes without blocking.
func (b *button) poll() {
	for b.uart.Buffered() > 0 {
		data, err := b.uart.ReadByte()
		if err != nil {
			return
		}

		if data == '\n' || data == '\r' {
			if b.pos == 1 && b.line[0] == 'P' {
				b.remote = true
			}
			// Reset buffer regardless of length
			b.pos = 0
			continue
		}
		if data == ' ' || data == '\t' {
			continue
		}
		if b.pos < len(b.line) {
			b.line[b.pos] = data
			b.pos++
		}
	}
}

// outputs drives the lights, buzzer, gate servo and countdown digit.
type outputs struct {
	cfg crossing.Config

	red, yellow, green, buzzer machine.Pin

	gate    servo.Servo
	gateErr error
	display *segment.Display
}

func newOutputs(cfg crossing.Config) *outputs {
	o := &outputs{
		cfg:    cfg,
		red:    PIN_RED,
		yellow: PIN_YELLOW,
		green:  PIN_GREEN,
		buzzer: PIN_BUZZER,
	}
	for _, pin := range []machine.Pin{o.red, o.yellow, o.green, o.buzzer,
		PIN_SEG_A, PIN_SEG_B, PIN_SEG_C, PIN_SEG_D, PIN_SEG_E, PIN_SEG_F, PIN_SEG_G} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}

	o.gate, o.gateErr = servo.New(PWM_SERVO, PIN_SERVO)
	o.display = segment.New(PIN_SEG_A, PIN_SEG_B, PIN_SEG_C, PIN_SEG_D, PIN_SEG_E, PIN_SEG_F, PIN_SEG_G)
	return o
}

func (o *outputs) SetLights(red, yellow, green bool) error {
	o.red.Set(red)
	o.yellow.Set(yellow)
	o.green.Set(green)
	return nil
}

func (o *outputs) SetBuzzer(on bool) error {
	o.buzzer.Set(on)
	return nil
}

func (o *outputs) SetGate(pos crossing.GatePosition) error {
	if o.gateErr != nil {
		return o.gateErr
	}
	return o.gate.SetAngle(o.cfg.GateAngle(pos))
}

func (o *outputs) SetDisplay(glyph int) error {
	o.display.Show(glyph)
	return nil
}
