//go:generate tinygo flash -target=arduino

package main

import (
	"machine"
	"time"

	"github.com/itohio/gocrossing/pkg/crossing"
	"github.com/itohio/gocrossing/pkg/sensor"
	"github.com/itohio/gocrossing/pkg/telemetry"
)

var (
	uart = machine.UART0

	// Diagnostic and fault line buffers, reused every tick
	line  [128]byte
	fault [96]byte
)

func main() {
	cfg := crossing.DefaultConfig()
	if SIMPLE_PROFILE {
		cfg = crossing.SimpleConfig()
	}

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	PIN_TRIGGER.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_ECHO.Configure(machine.PinConfig{Mode: machine.PinInput})
	ranger := sensor.NewUltrasonic(PIN_TRIGGER, PIN_ECHO)

	ctrl := crossing.New(cfg, ranger, newButton(PIN_BUTTON, uart), newOutputs(cfg), crossing.SinceClock(time.Now()))
	ctrl.Logf = logf

	// Main loop; the ranger settle delay paces it
	ctrl.Run(nil, func(t crossing.Tick) {
		out := telemetry.AppendRecord(line[:0], telemetry.FromTick(t))
		out = append(out, '\r', '\n')
		uart.Write(out)
	})
}

// logf writes controller faults to the UART as "# ..." lines, which the
// host skips.
func logf(format string, args ...any) {
	out := telemetry.AppendFault(fault[:0], format, args...)
	out = append(out, '\r', '\n')
	uart.Write(out)
}
