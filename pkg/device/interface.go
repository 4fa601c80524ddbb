package device

import "github.com/itohio/gocrossing/pkg/telemetry"

// Device is a connection to a crossing controller (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Records() <-chan telemetry.Record
	Request() error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
