// Package monitor attaches to a flashed node's serial console and turns its
// per-cycle diagnostic lines back into structured records. The node prints
// one "cycle cause=... pin=... emit=... path=..." line per wake; everything
// else on the console is passed over.
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the node's console UART.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the records channel buffer.
	DefaultBufferSize = 100
)

// cycleMarker starts every per-cycle diagnostic line, after the log
// timestamp prefix.
const cycleMarker = "cycle "

// CycleRecord is one parsed wake cycle.
type CycleRecord struct {
	Cause string // poweron, timer, level, other
	Pin   byte   // sampled wake pin level, 0 or 1
	Emit  bool   // whether the cycle carried a status update
	Path  string // fast or radio
}

// Monitor reads cycle records from a serial console.
type Monitor struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	records   chan CycleRecord
	mu        sync.RWMutex
	done      chan struct{}
	connected bool
	closed    bool
}

// New creates a monitor for the given port. Zero baudRate and bufSize pick
// the defaults.
func New(port string, baudRate int, bufSize int) *Monitor {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	return &Monitor{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		records:  make(chan CycleRecord, bufSize),
		done:     make(chan struct{}),
	}
}

// Ports returns the names of the available serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the serial port and starts reading cycle records.
func (m *Monitor) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.closed {
		return fmt.Errorf("monitor closed")
	}

	port, err := serial.Open(m.port, &serial.Mode{BaudRate: m.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", m.port, err)
	}

	m.conn = port
	m.connected = true

	go m.readLines(port)

	return nil
}

// Close closes the port and stops the reader. The records channel stays
// owned by the reader, which closes it on its way out; Close never touches
// it, so an in-flight send can not hit a closed channel.
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	close(m.done)
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		m.conn = nil
	}
	m.connected = false
	m.closed = true

	return nil
}

// Records returns the channel of parsed cycle records.
func (m *Monitor) Records() <-chan CycleRecord {
	return m.records
}

// IsConnected reports whether the monitor is attached to a port.
func (m *Monitor) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// readLines scans console output and forwards every cycle line. It is the
// sole closer of the records channel: closing the port makes the scanner
// fail, the loop exits, and consumers ranging Records see end of stream.
func (m *Monitor) readLines(r io.Reader) {
	defer close(m.records)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-m.done:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, cycleMarker) {
			continue
		}

		rec, err := parseCycleLine(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		select {
		case m.records <- rec:
		case <-m.done:
			return
		default:
			// Channel full, drop the record.
			log.Printf("Records channel full, dropping record")
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		log.Printf("Error reading from serial port: %v", err)
	}
}

// parseCycleLine parses a cycle diagnostic line, tolerating any log prefix
// before the marker.
// Example: "2024/01/02 15:04:05 cycle cause=level pin=1 emit=true path=radio"
func parseCycleLine(line string) (CycleRecord, error) {
	idx := strings.Index(line, cycleMarker)
	if idx < 0 {
		return CycleRecord{}, fmt.Errorf("no cycle marker in line")
	}

	fields := strings.Fields(line[idx+len(cycleMarker):])
	if len(fields) != 4 {
		return CycleRecord{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}

	var rec CycleRecord
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return CycleRecord{}, fmt.Errorf("invalid field %q", f)
		}
		switch key {
		case "cause":
			switch value {
			case "poweron", "timer", "level", "other":
				rec.Cause = value
			default:
				return CycleRecord{}, fmt.Errorf("invalid cause %q", value)
			}
		case "pin":
			pin, err := strconv.ParseUint(value, 10, 8)
			if err != nil || pin > 1 {
				return CycleRecord{}, fmt.Errorf("invalid pin %q", value)
			}
			rec.Pin = byte(pin)
		case "emit":
			emit, err := strconv.ParseBool(value)
			if err != nil {
				return CycleRecord{}, fmt.Errorf("invalid emit %q", value)
			}
			rec.Emit = emit
		case "path":
			if value != "fast" && value != "radio" {
				return CycleRecord{}, fmt.Errorf("invalid path %q", value)
			}
			rec.Path = value
		default:
			return CycleRecord{}, fmt.Errorf("unknown field %q", key)
		}
	}

	if rec.Cause == "" || rec.Path == "" {
		return CycleRecord{}, fmt.Errorf("missing cause or path")
	}
	return rec, nil
}
