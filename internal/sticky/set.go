// internal/sticky/set.go
package sticky

import (
	"time"

	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

// DefaultDescriptors are the SAJ counters that need sticky handling.
// Every other key is Plain.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{Key: "totalenergy", Policy: Forever},
		{Key: "totalhour", Policy: Forever},
		{Key: "todayenergy", Policy: Windowed, Window: Day},
		{Key: "todayhour", Policy: Windowed, Window: Day},
		{Key: "monthenergy", Policy: Windowed, Window: Month},
		{Key: "yearenergy", Policy: Windowed, Window: Year},
	}
}

// Set owns one tracker per declared metric.
type Set struct {
	trackers map[string]*Tracker
	order    []string
}

// NewSet builds trackers for every descriptor.
func NewSet(descs []Descriptor, zeroAsMissing bool) *Set {
	s := &Set{trackers: make(map[string]*Tracker, len(descs))}
	for _, d := range descs {
		if _, dup := s.trackers[d.Key]; dup {
			continue
		}
		s.trackers[d.Key] = NewTracker(d, zeroAsMissing)
		s.order = append(s.order, d.Key)
	}
	return s
}

// Apply returns a new snapshot with sticky policies applied.
// Keys without a tracker pass through unchanged. Tracked keys absent from
// in may reappear with their remembered value.
func (s *Set) Apply(in telemetry.Snapshot, now time.Time) telemetry.Snapshot {
	out := make(telemetry.Snapshot, len(in)+len(s.order))
	for k, v := range in {
		if _, tracked := s.trackers[k]; !tracked {
			out[k] = v
		}
	}

	for _, k := range s.order {
		v, present := in[k]
		if emit, ok := s.trackers[k].Observe(v, present, now); ok {
			out[k] = emit
		}
	}
	return out
}
