// internal/telemetry/snapshot.go
package telemetry

import "sort"

// Snapshot maps stable metric keys to values.
// It is produced fresh on every poll cycle. An empty Snapshot means the
// cycle (or block) produced nothing.
type Snapshot map[string]Value

// Merge copies every key of each source into a new Snapshot.
// Later sources win on collision.
func Merge(srcs ...Snapshot) Snapshot {
	n := 0
	for _, s := range srcs {
		n += len(s)
	}
	out := make(Snapshot, n)
	for _, s := range srcs {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// Keys returns the snapshot keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy safe to hand to another goroutine.
func (s Snapshot) Clone() Snapshot {
	return Merge(s)
}
