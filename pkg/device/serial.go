package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/itohio/gocrossing/pkg/telemetry"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	// DefaultBaudRate is the firmware UART speed.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the records channel buffer.
	DefaultBufferSize = 100
)

// RequestCommand is the line the firmware treats as a button press.
const RequestCommand = "P\n"

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the controller firmware.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	open func(name string, mode *serial.Mode) (io.ReadWriteCloser, error)

	conn      io.ReadWriteCloser
	records   chan telemetry.Record
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	now func() time.Time
}

// New creates a new Serial device for the given port, baud rate and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		open:     openSerial,
		records:  make(chan telemetry.Record, bufSize),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}
}

func openSerial(name string, mode *serial.Mode) (io.ReadWriteCloser, error) {
	return serial.Open(name, mode)
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil && len(details) > 0 {
		result := make([]Port, 0, len(details))
		for _, d := range details {
			desc := d.Name
			if d.IsUSB {
				desc = fmt.Sprintf("%s %s:%s", d.Product, d.VID, d.PID)
			}
			result = append(result, Port{Name: d.Name, Description: strings.TrimSpace(desc)})
		}
		return result, nil
	}

	// Fall back to plain names when USB details are unavailable.
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading records.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	conn, err := d.open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = conn
	d.connected = true

	go d.readRecords()

	return nil
}

// Close closes the connection and stops reading records.
// The records channel is closed once the reader has exited.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	d.connected = false
	d.cancel()
	if err := d.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	d.mu.Unlock()

	// Closing the port unblocks the scanner.
	<-d.done
	return nil
}

// Records returns the channel for reading records.
func (d *Serial) Records() <-chan telemetry.Record {
	return d.records
}

// Request sends a remote button press to the controller.
func (d *Serial) Request() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return ErrNotConnected
	}

	if _, err := io.WriteString(d.conn, RequestCommand); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readRecords reads lines from the serial port and parses them into records.
func (d *Serial) readRecords() {
	defer close(d.done)
	defer close(d.records)

	scanner := bufio.NewScanner(d.conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, strings.TrimSpace(telemetry.FaultPrefix)) {
			log.Printf("Device fault: %s", strings.TrimSpace(line[1:]))
			continue
		}

		record, err := telemetry.Parse(line)
		if err != nil {
			// Boot banners and partial lines after a reset are expected.
			log.Printf("Skipping line %q: %v", line, err)
			continue
		}
		record.Timestamp = d.now()

		select {
		case d.records <- record:
		case <-d.ctx.Done():
			return
		default:
			log.Printf("Records channel full, dropping record")
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && d.ctx.Err() == nil {
		log.Printf("Error reading from serial port: %v", err)
	}
}
