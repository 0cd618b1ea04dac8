// internal/writer/history.go
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tamzrod/saj-telemetry/internal/poller"
	"github.com/tamzrod/saj-telemetry/internal/store"
)

const saveTimeout = 5 * time.Second

// saver is the store contract the history writer needs.
type saver interface {
	Save(ctx context.Context, rec store.Record) error
}

// historyWriter persists every cycle, failed ones included, so gaps
// are visible in the history.
type historyWriter struct {
	store    saver
	inverter string
}

func (w *historyWriter) Write(res poller.PollResult) error {
	values, err := json.Marshal(res.Snapshot)
	if err != nil {
		return fmt.Errorf("history writer: encode: %w", err)
	}
	if res.Snapshot == nil {
		values = []byte("{}")
	}

	rec := store.Record{
		Inverter: w.inverter,
		At:       res.At,
		Values:   values,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := w.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("history writer: %w", err)
	}
	return nil
}
