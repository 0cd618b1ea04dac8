// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// DefaultTimeout bounds every register read.
const DefaultTimeout = 5 * time.Second

// Client implements poller.Client on top of goburrow/modbus.
// The underlying handler is not safe for concurrent use, so every request
// holds mu. The connection is opened lazily by the handler on the next
// request after Close.
type Client struct {
	mu       sync.Mutex
	handler  handlerWithConn
	client   modbus.Client
	setSlave func(byte)
}

// handlerWithConn is a goburrow handler with explicit lifecycle.
type handlerWithConn interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// SerialConfig is the RTU line setup.
type SerialConfig struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
}

// Config is minimal transport config.
type Config struct {
	Transport string // "tcp" (default) or "rtu"
	Endpoint  string // host:port for tcp
	Serial    SerialConfig
	Timeout   time.Duration
}

// New creates a client. No connection is made until the first read.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{}

	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", "tcp":
		if cfg.Endpoint == "" {
			return nil, errors.New("modbus client: endpoint required")
		}
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		c.handler = h
		c.setSlave = func(id byte) { h.SlaveId = id }

	case "rtu":
		if cfg.Serial.Device == "" {
			return nil, errors.New("modbus client: serial device required")
		}
		h := modbus.NewRTUClientHandler(cfg.Serial.Device)
		h.BaudRate = cfg.Serial.BaudRate
		h.DataBits = cfg.Serial.DataBits
		h.Parity = cfg.Serial.Parity
		h.StopBits = cfg.Serial.StopBits
		h.Timeout = cfg.Timeout
		c.handler = h
		c.setSlave = func(id byte) { h.SlaveId = id }

	default:
		return nil, fmt.Errorf("modbus client: unsupported transport %q", cfg.Transport)
	}

	c.client = modbus.NewClient(c.handler)
	return c, nil
}

// ReadHoldingRegisters reads qty registers starting at addr (FC 3).
// Device exception responses come back as *ExceptionError.
func (c *Client) ReadHoldingRegisters(unitID uint8, addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setSlave(unitID)

	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		var me *modbus.ModbusError
		if errors.As(err, &me) {
			return nil, &ExceptionError{Function: me.FunctionCode, Code: me.ExceptionCode}
		}
		return nil, err
	}
	if len(raw)%2 != 0 {
		return nil, errors.New("modbus: read-registers byte count not even")
	}
	return unpackRegisters(raw), nil
}

// Close drops the session. The next read reconnects.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// ExceptionError is a Modbus exception response: the device answered,
// but refused the request.
type ExceptionError struct {
	Function byte
	Code     byte
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus exception: fc=%d code=%d", e.Function, e.Code)
}

// ExceptionCode exposes the device code for error classification.
func (e *ExceptionError) ExceptionCode() uint16 { return uint16(e.Code) }

// ---- helpers (pure geometry) ----

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
