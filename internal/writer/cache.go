// internal/writer/cache.go
package writer

import (
	"sort"
	"sync"
	"time"

	"github.com/tamzrod/saj-telemetry/internal/poller"
	"github.com/tamzrod/saj-telemetry/internal/status"
	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

// Entry is the latest known state of one inverter.
type Entry struct {
	Inverter string             `json:"inverter"`
	At       time.Time          `json:"at"`
	Error    string             `json:"error,omitempty"`
	Values   telemetry.Snapshot `json:"values"`
	Status   status.Snapshot    `json:"status"`
}

// Cache keeps the latest Entry per inverter for readers such as the HTTP API.
// Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Register makes an inverter visible before its first poll.
func (c *Cache) Register(inverter string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[inverter]; !ok {
		c.entries[inverter] = Entry{
			Inverter: inverter,
			Values:   telemetry.Snapshot{},
			Status:   status.Snapshot{Health: status.HealthUnknown},
		}
	}
}

func (c *Cache) Get(inverter string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[inverter]
	return e, ok
}

// List returns all entries ordered by inverter id.
func (c *Cache) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Inverter < out[j].Inverter })
	return out
}

func (c *Cache) update(inverter string, fn func(*Entry)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[inverter]
	if !ok {
		e = Entry{Inverter: inverter, Status: status.Snapshot{Health: status.HealthUnknown}}
	}
	fn(&e)
	c.entries[inverter] = e
}

// cacheWriter feeds one inverter's results and status into a Cache.
type cacheWriter struct {
	cache    *Cache
	inverter string
}

func (w *cacheWriter) Write(res poller.PollResult) error {
	values := res.Snapshot.Clone()
	if values == nil {
		values = telemetry.Snapshot{}
	}
	w.cache.update(w.inverter, func(e *Entry) {
		e.At = res.At
		e.Values = values
		e.Error = ""
		if res.Err != nil {
			e.Error = res.Err.Error()
		}
	})
	return nil
}

func (w *cacheWriter) WriteStatus(s status.Snapshot) error {
	w.cache.update(w.inverter, func(e *Entry) { e.Status = s })
	return nil
}
