// internal/status/constants.go
package status

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a reachable inverter.
const HealthOK uint16 = 1

// HealthError represents a failed poll cycle.
const HealthError uint16 = 2

// ---- LIMITS ----

// MaxSecondsInError caps the error duration counter.
const MaxSecondsInError = 65535

// GenericErrorCode is reported when an error carries no code of its own.
const GenericErrorCode uint16 = 1

// HealthName returns a lowercase label for a health code.
func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	}
	return "unknown"
}
