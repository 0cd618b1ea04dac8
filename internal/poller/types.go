// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

// ReadBlock describes one Modbus read geometry.
type ReadBlock struct {
	Name     string
	Address  uint16
	Quantity uint16
}

// BlockResult is the outcome of one block within a cycle.
// A soft failure (exception response, wrong length) leaves Values empty
// and sets Err; it does not fail the cycle.
type BlockResult struct {
	Block  ReadBlock
	Values telemetry.Snapshot
	Err    error
}

// PollResult is what one poll cycle produced.
type PollResult struct {
	UnitID string
	At     time.Time

	// Raw is the merged decoder output before sticky handling.
	Raw telemetry.Snapshot
	// Snapshot is the final, sticky-applied view handed to consumers.
	Snapshot telemetry.Snapshot

	Blocks []BlockResult
	Err    error // non-nil means the poll cycle failed
}
