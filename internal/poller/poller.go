// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/saj-telemetry/internal/decoder"
	"github.com/tamzrod/saj-telemetry/internal/sticky"
	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

// Client abstracts the register transport.
// Implementations must return exactly qty words or an error.
type Client interface {
	ReadHoldingRegisters(unitID uint8, addr, qty uint16) ([]uint16, error) // FC 3
	Close() error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string // inverter id (naming only)
	SlaveID  uint8  // Modbus unit id
	Interval time.Duration
}

// The two fixed reads of every cycle.
var (
	DeviceInfoBlock = ReadBlock{Name: "device_info", Address: decoder.DeviceInfoAddress, Quantity: decoder.DeviceInfoWords}
	RealtimeBlock   = ReadBlock{Name: "realtime", Address: decoder.RealtimeAddress, Quantity: decoder.RealtimeWords}
)

// Poller runs the SAJ poll cycle for one inverter.
// It owns the transport, the decoders and the sticky state; nothing is
// shared with other pollers.
type Poller struct {
	cfg      Config
	client   Client
	realtime *decoder.Realtime
	sticky   *sticky.Set
	log      zerolog.Logger
	now      func() time.Time

	// cycle serializes PollOnce and Close on the session.
	cycle sync.Mutex

	mu        sync.Mutex
	listeners map[int]func(PollResult)
	nextID    int
}

// New creates a poller with immutable config.
func New(cfg Config, client Client, rt *decoder.Realtime, set *sticky.Set, log zerolog.Logger) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if rt == nil {
		return nil, errors.New("poller: realtime decoder required")
	}
	if set == nil {
		set = sticky.NewSet(nil, false)
	}
	return &Poller{
		cfg:       cfg,
		client:    client,
		realtime:  rt,
		sticky:    set,
		log:       log.With().Str("inverter", cfg.UnitID).Logger(),
		now:       time.Now,
		listeners: make(map[int]func(PollResult)),
	}, nil
}

// PollOnce performs exactly one poll cycle and always closes the session
// before returning.
//
// Transport failures and corrupted reads abort the cycle: the raw snapshot
// is empty and only sticky values survive. Exception responses and wrong
// block lengths only blank their own block.
func (p *Poller) PollOnce() PollResult {
	p.cycle.Lock()
	defer p.cycle.Unlock()

	now := p.now()
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     now,
	}

	raw, blocks, err := p.readAll()
	res.Blocks = blocks

	if err != nil {
		res.Err = err
		raw = telemetry.Snapshot{}
		p.log.Error().Err(err).Msg("reading realtime data failed, inverter is unreachable")
	}

	if cerr := p.client.Close(); cerr != nil {
		p.log.Debug().Err(cerr).Msg("close session")
	}

	res.Raw = raw
	res.Snapshot = p.sticky.Apply(raw, now)

	return res
}

// readAll reads and decodes both blocks in order.
func (p *Poller) readAll() (telemetry.Snapshot, []BlockResult, error) {
	info, err := p.readBlock(DeviceInfoBlock, decoder.DecodeDeviceInfo)
	if err != nil {
		return nil, []BlockResult{info}, err
	}

	rt, err := p.readBlock(RealtimeBlock, p.realtime.Decode)
	if err != nil {
		return nil, []BlockResult{info, rt}, err
	}

	return telemetry.Merge(info.Values, rt.Values), []BlockResult{info, rt}, nil
}

// readBlock returns a hard error only for failures that abort the cycle.
func (p *Poller) readBlock(b ReadBlock, decode func([]uint16) (telemetry.Snapshot, error)) (BlockResult, error) {
	br := BlockResult{Block: b, Values: telemetry.Snapshot{}}

	regs, err := p.client.ReadHoldingRegisters(p.cfg.SlaveID, b.Address, b.Quantity)
	if err != nil {
		br.Err = err
		if isException(err) {
			p.log.Warn().Err(err).Str("block", b.Name).Msg("device rejected read")
			return br, nil
		}
		return br, fmt.Errorf("poller: read %s: %w", b.Name, err)
	}

	values, err := decode(regs)
	if err != nil {
		br.Err = err
		if errors.Is(err, decoder.ErrBlockLength) {
			p.log.Warn().Err(err).Str("block", b.Name).Msg("block skipped")
			return br, nil
		}
		return br, fmt.Errorf("poller: decode %s: %w", b.Name, err)
	}

	br.Values = values
	return br, nil
}

// isException reports whether the device answered with a Modbus exception.
func isException(err error) bool {
	type exceptionCoder interface{ ExceptionCode() uint16 }
	var ec exceptionCoder
	return errors.As(err, &ec)
}

// Close drops the transport session. Safe to call between cycles.
func (p *Poller) Close() error {
	p.cycle.Lock()
	defer p.cycle.Unlock()
	return p.client.Close()
}
