// internal/status/snapshot.go
package status

import "time"

// Snapshot is the link health of one inverter.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16    `json:"health"`
	LastErrorCode  uint16    `json:"last_error_code"`
	LastError      string    `json:"last_error,omitempty"`
	SecondsInError uint16    `json:"seconds_in_error"`
	LastSuccess    time.Time `json:"last_success,omitempty"`
}

// Online reports whether the last cycle succeeded.
func (s Snapshot) Online() bool { return s.Health == HealthOK }
