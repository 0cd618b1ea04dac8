// internal/writer/writer.go
package writer

import (
	"errors"
	"strings"

	"github.com/tamzrod/saj-telemetry/internal/poller"
	"github.com/tamzrod/saj-telemetry/internal/status"
)

// Fanout delivers every result and status snapshot to all its sinks.
// One failing sink does not stop the others.
type Fanout struct {
	writers       []Writer
	statusWriters []StatusWriter
}

func NewFanout(writers []Writer, statusWriters []StatusWriter) *Fanout {
	return &Fanout{
		writers:       writers,
		statusWriters: statusWriters,
	}
}

func (f *Fanout) Write(res poller.PollResult) error {
	var errs []string
	for _, w := range f.writers {
		if err := w.Write(res); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return joinErrs(errs)
}

func (f *Fanout) WriteStatus(s status.Snapshot) error {
	var errs []string
	for _, w := range f.statusWriters {
		if err := w.WriteStatus(s); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return joinErrs(errs)
}

func joinErrs(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(errs, " | "))
}
