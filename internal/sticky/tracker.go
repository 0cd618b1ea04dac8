// internal/sticky/tracker.go
package sticky

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

// Policy selects how a metric behaves when a poll yields no reading.
type Policy uint8

const (
	// Plain has no memory: the metric is whatever the poll produced.
	Plain Policy = iota
	// Forever repeats the last reading indefinitely (lifetime totals).
	Forever
	// Windowed repeats the last reading inside its calendar window and
	// resets to zero once the window has passed (day/month/year counters).
	Windowed
)

func (p Policy) String() string {
	switch p {
	case Plain:
		return "plain"
	case Forever:
		return "forever"
	case Windowed:
		return "windowed"
	}
	return fmt.Sprintf("policy(%d)", p)
}

// Window is the calendar granularity of a periodic counter.
type Window uint8

const (
	Day Window = iota
	Month
	Year
)

// Same reports whether a and b fall inside the same window.
// b is compared in a's location.
func (w Window) Same(a, b time.Time) bool {
	b = b.In(a.Location())
	switch w {
	case Day:
		return a.Year() == b.Year() && a.YearDay() == b.YearDay()
	case Month:
		return a.Year() == b.Year() && a.Month() == b.Month()
	case Year:
		return a.Year() == b.Year()
	}
	return false
}

func (w Window) String() string {
	switch w {
	case Day:
		return "day"
	case Month:
		return "month"
	case Year:
		return "year"
	}
	return fmt.Sprintf("window(%d)", w)
}

// Descriptor declares the sticky behaviour of one metric.
type Descriptor struct {
	Key    string
	Policy Policy
	Window Window // Windowed only
}

// Tracker holds the sticky state of one metric.
// It is not safe for concurrent use; the poll cycle owns it.
type Tracker struct {
	desc Descriptor

	zeroAsMissing bool

	last     telemetry.Value
	hasLast  bool
	lastSeen time.Time
}

// NewTracker creates an empty tracker for d.
func NewTracker(d Descriptor, zeroAsMissing bool) *Tracker {
	return &Tracker{desc: d, zeroAsMissing: zeroAsMissing}
}

// Observe feeds one poll's reading and returns what to emit.
// ok=false means the metric is missing for this poll.
func (t *Tracker) Observe(v telemetry.Value, present bool, now time.Time) (telemetry.Value, bool) {
	if t.desc.Policy == Plain {
		return v, present
	}
	if present && t.absent(v) {
		present = false
	}

	switch t.desc.Policy {
	case Forever:
		if present {
			t.last, t.hasLast = v, true
			return v, true
		}
		return t.last, t.hasLast

	case Windowed:
		if present {
			t.last, t.hasLast = v, true
			t.lastSeen = now
			return v, true
		}
		if !t.hasLast {
			return telemetry.Value{}, false
		}
		if !t.desc.Window.Same(t.lastSeen, now) {
			// lastSeen stays put: the window has passed, the counter is 0
			// until the inverter reports again.
			t.last = zeroLike(t.last)
		}
		return t.last, true
	}

	return v, present
}

// absent reports whether a present key still carries no reading.
func (t *Tracker) absent(v telemetry.Value) bool {
	if v.IsUnavailable() {
		return true
	}
	return t.zeroAsMissing && v.IsZero()
}

// zeroLike returns a zero of the same numeric shape as v.
func zeroLike(v telemetry.Value) telemetry.Value {
	switch v.Kind {
	case telemetry.KindDecimal:
		return telemetry.Decimal(decimal.Zero, v.Places)
	}
	return telemetry.Int(0)
}
