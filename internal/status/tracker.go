// internal/status/tracker.go
package status

import (
	"errors"
	"time"
)

// Tracker derives link health from poll outcomes.
// It is owned by one goroutine; no locking.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts in HealthUnknown.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe applies one poll outcome and reports whether the state changed.
func (t *Tracker) Observe(err error, at time.Time) (Snapshot, bool) {
	changed := false

	if err == nil {
		// Recovery / OK
		if t.snap.Health != HealthOK {
			t.snap.Health = HealthOK
			changed = true
		}
		if t.snap.LastErrorCode != 0 || t.snap.LastError != "" {
			t.snap.LastErrorCode = 0
			t.snap.LastError = ""
			changed = true
		}
		if t.snap.SecondsInError != 0 {
			t.snap.SecondsInError = 0
			changed = true
		}
		t.snap.LastSuccess = at
		return t.snap, changed
	}

	if t.snap.Health != HealthError {
		t.snap.Health = HealthError
		changed = true
	}

	code := ErrorCode(err)
	if t.snap.LastErrorCode != code {
		t.snap.LastErrorCode = code
		changed = true
	}
	t.snap.LastError = err.Error()

	// seconds_in_error increments on Tick only
	return t.snap, changed
}

// Tick advances seconds_in_error while not OK. Call at 1 Hz.
func (t *Tracker) Tick() (Snapshot, bool) {
	if t.snap.Health == HealthOK || t.snap.Health == HealthUnknown {
		return t.snap, false
	}
	if t.snap.SecondsInError >= MaxSecondsInError {
		return t.snap, false
	}
	t.snap.SecondsInError++
	return t.snap, true
}

// ErrorCode extracts a best-effort uint16 code from an error without
// assuming concrete types. Errors without a code map to GenericErrorCode.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ExceptionCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ExceptionCode()
	}

	return GenericErrorCode
}
