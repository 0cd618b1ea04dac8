// internal/writer/metrics.go
package writer

import (
	"github.com/tamzrod/saj-telemetry/internal/metrics"
	"github.com/tamzrod/saj-telemetry/internal/poller"
	"github.com/tamzrod/saj-telemetry/internal/status"
)

// metricsWriter mirrors results and status into Prometheus collectors.
type metricsWriter struct {
	m        *metrics.Metrics
	inverter string
}

func (w *metricsWriter) Write(res poller.PollResult) error {
	w.m.ObservePoll(w.inverter, res.Snapshot, res.Err)
	return nil
}

func (w *metricsWriter) WriteStatus(s status.Snapshot) error {
	w.m.ObserveStatus(w.inverter, s)
	return nil
}
