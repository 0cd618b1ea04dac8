// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/saj-telemetry/internal/codec"
	"github.com/tamzrod/saj-telemetry/internal/decoder"
	"github.com/tamzrod/saj-telemetry/internal/sticky"
)

// ---- fake client ----

type exceptionErr struct{ code uint16 }

func (e exceptionErr) Error() string          { return "modbus exception" }
func (e exceptionErr) ExceptionCode() uint16 { return e.code }

type fakeClient struct {
	blocks map[uint16][]uint16 // address -> registers
	errs   map[uint16]error    // address -> error

	reads  []uint16
	closes int
}

func (f *fakeClient) ReadHoldingRegisters(unitID uint8, addr, qty uint16) ([]uint16, error) {
	f.reads = append(f.reads, addr)
	if err := f.errs[addr]; err != nil {
		return nil, err
	}
	return f.blocks[addr], nil
}

func (f *fakeClient) Close() error {
	f.closes++
	return nil
}

func newFakeClient() *fakeClient {
	info := make([]uint16, decoder.DeviceInfoWords)
	info[0] = 1
	copy(info[3:13], codec.PackASCIIPairs("R6SN0001"))

	rt := make([]uint16, decoder.RealtimeWords)
	rt[0] = 2024
	rt[1] = 3<<8 | 10
	rt[2] = 12 << 8
	rt[10], rt[11] = 0, 420 // todayenergy 4.20
	rt[4], rt[5] = 0, 9000  // totalenergy 90.00
	rt[19] = 2

	return &fakeClient{
		blocks: map[uint16][]uint16{
			decoder.DeviceInfoAddress: info,
			decoder.RealtimeAddress:   rt,
		},
		errs: map[uint16]error{},
	}
}

func newTestPoller(t *testing.T, c Client) *Poller {
	t.Helper()

	p, err := New(
		Config{UnitID: "inv1", SlaveID: 1, Interval: time.Second},
		c,
		decoder.NewRealtime(time.UTC, zerolog.Nop()),
		sticky.NewSet(sticky.DefaultDescriptors(), false),
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return p
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	rt := decoder.NewRealtime(time.UTC, zerolog.Nop())
	c := newFakeClient()

	if _, err := New(Config{Interval: time.Second}, c, rt, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected unit id error")
	}
	if _, err := New(Config{UnitID: "x"}, c, rt, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected interval error")
	}
	if _, err := New(Config{UnitID: "x", Interval: time.Second}, nil, rt, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected client error")
	}
}

func TestPollOnce_Success(t *testing.T) {
	c := newFakeClient()
	p := newTestPoller(t, c)

	res := p.PollOnce()
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}

	if len(c.reads) != 2 || c.reads[0] != decoder.DeviceInfoAddress || c.reads[1] != decoder.RealtimeAddress {
		t.Fatalf("unexpected read order: %#x", c.reads)
	}
	if c.closes != 1 {
		t.Fatalf("session must be closed after the cycle, closes=%d", c.closes)
	}

	if res.Snapshot["sn"].String() != "R6SN0001" {
		t.Fatalf("device info missing from snapshot: %v", res.Snapshot["sn"])
	}
	if res.Snapshot["todayenergy"].String() != "4.20" {
		t.Fatalf("realtime missing from snapshot: %v", res.Snapshot["todayenergy"])
	}
	if res.Snapshot["mpvmode"].String() != "Normal" {
		t.Fatalf("mpvmode: %v", res.Snapshot["mpvmode"])
	}
}

func TestPollOnce_TransportErrorAbortsCycle(t *testing.T) {
	c := newFakeClient()
	p := newTestPoller(t, c)

	// first good cycle feeds the sticky counters
	p.PollOnce()

	c.errs[decoder.DeviceInfoAddress] = syscall.ECONNRESET
	res := p.PollOnce()

	if !errors.Is(res.Err, syscall.ECONNRESET) {
		t.Fatalf("expected connection reset, got %v", res.Err)
	}
	if len(c.reads) != 3 {
		t.Fatalf("realtime must not be read after a transport error, reads=%#x", c.reads)
	}
	if c.closes != 2 {
		t.Fatalf("session must be closed on failure, closes=%d", c.closes)
	}
	if len(res.Raw) != 0 {
		t.Fatalf("raw snapshot must be empty on failure, got %d keys", len(res.Raw))
	}

	// only sticky metrics survive
	if res.Snapshot["totalenergy"].String() != "90.00" {
		t.Fatalf("total must stick, got %v", res.Snapshot["totalenergy"])
	}
	if _, ok := res.Snapshot["sn"]; ok {
		t.Fatalf("plain metric must be missing after failed cycle")
	}
}

func TestPollOnce_DeviceInfoWrongLengthIsSoft(t *testing.T) {
	c := newFakeClient()
	c.blocks[decoder.DeviceInfoAddress] = make([]uint16, 28)
	p := newTestPoller(t, c)

	res := p.PollOnce()
	if res.Err != nil {
		t.Fatalf("wrong length must not fail the cycle: %v", res.Err)
	}
	if !errors.Is(res.Blocks[0].Err, decoder.ErrBlockLength) {
		t.Fatalf("expected block error, got %v", res.Blocks[0].Err)
	}
	if _, ok := res.Snapshot["sn"]; ok {
		t.Fatalf("device info keys must be absent")
	}
	if res.Snapshot["todayenergy"].String() != "4.20" {
		t.Fatalf("realtime block must still decode")
	}
}

func TestPollOnce_ExceptionIsSoft(t *testing.T) {
	c := newFakeClient()
	c.errs[decoder.DeviceInfoAddress] = exceptionErr{code: 2}
	p := newTestPoller(t, c)

	res := p.PollOnce()
	if res.Err != nil {
		t.Fatalf("exception must not fail the cycle: %v", res.Err)
	}
	if len(c.reads) != 2 {
		t.Fatalf("realtime must still be read")
	}
	if res.Snapshot["mpvmode"].String() != "Normal" {
		t.Fatalf("realtime values missing")
	}
}

func TestPollOnce_BadClockFailsCycle(t *testing.T) {
	c := newFakeClient()
	c.blocks[decoder.RealtimeAddress][1] = 13<<8 | 1
	p := newTestPoller(t, c)

	res := p.PollOnce()
	var de *codec.DecodeError
	if !errors.As(res.Err, &de) {
		t.Fatalf("expected decode error, got %v", res.Err)
	}
	if len(res.Raw) != 0 {
		t.Fatalf("raw snapshot must be empty")
	}
	if _, ok := res.Snapshot["sn"]; ok {
		t.Fatalf("device info must be dropped with the cycle")
	}
}

func TestPollOnce_DayCounterResets(t *testing.T) {
	c := newFakeClient()
	p := newTestPoller(t, c)

	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return day }
	p.PollOnce()

	c.errs[decoder.DeviceInfoAddress] = syscall.EPIPE

	res := p.PollOnce()
	if res.Snapshot["todayenergy"].String() != "4.20" {
		t.Fatalf("same day: expected stale value, got %v", res.Snapshot["todayenergy"])
	}

	p.now = func() time.Time { return day.Add(24 * time.Hour) }
	res = p.PollOnce()
	if !res.Snapshot["todayenergy"].IsZero() {
		t.Fatalf("next day: expected 0, got %v", res.Snapshot["todayenergy"])
	}
}

func TestListeners_LastDetachClosesSession(t *testing.T) {
	c := newFakeClient()
	p := newTestPoller(t, c)

	var got int
	remove1 := p.AddListener(func(PollResult) { got++ })
	remove2 := p.AddListener(func(PollResult) { got++ })

	p.tick()
	if got != 2 {
		t.Fatalf("expected 2 deliveries, got %d", got)
	}

	closes := c.closes
	remove1()
	if c.closes != closes {
		t.Fatalf("session closed while a listener remains")
	}
	remove2()
	if c.closes != closes+1 {
		t.Fatalf("session must close when the last listener detaches")
	}
	remove2() // idempotent
	if c.closes != closes+1 {
		t.Fatalf("double remove closed again")
	}

	reads := len(c.reads)
	p.tick()
	if len(c.reads) != reads {
		t.Fatalf("tick without listeners must not poll")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	c := newFakeClient()
	p := newTestPoller(t, c)

	results := make(chan PollResult, 4)
	p.AddListener(func(r PollResult) {
		select {
		case results <- r:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case r := <-results:
		if r.Err != nil {
			t.Fatalf("first cycle failed: %v", r.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no immediate first poll")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
