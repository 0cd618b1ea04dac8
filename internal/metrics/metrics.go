// internal/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/saj-telemetry/internal/status"
	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

const namespace = "saj"

// Metrics holds the Prometheus collectors for every inverter.
type Metrics struct {
	values         *prometheus.GaugeVec
	polls          *prometheus.CounterVec
	health         *prometheus.GaugeVec
	secondsInError *prometheus.GaugeVec
	lastSuccess    *prometheus.GaugeVec

	mu   sync.Mutex
	seen map[string]map[string]struct{} // inverter -> keys with a gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "value",
			Help:      "Latest numeric telemetry value per inverter and key.",
		}, []string{"inverter", "key"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Poll cycles by result.",
		}, []string{"inverter", "result"}),
		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health",
			Help:      "Link health: 0 unknown, 1 ok, 2 error.",
		}, []string{"inverter"}),
		secondsInError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seconds_in_error",
			Help:      "Seconds since the link entered the error state.",
		}, []string{"inverter"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful poll.",
		}, []string{"inverter"}),
		seen: make(map[string]map[string]struct{}),
	}

	reg.MustRegister(m.values, m.polls, m.health, m.secondsInError, m.lastSuccess)
	return m
}

// ObservePoll records one cycle. Non-numeric, unavailable and missing keys
// drop their gauge so stale numbers are not scraped.
func (m *Metrics) ObservePoll(inverter string, snap telemetry.Snapshot, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.polls.WithLabelValues(inverter, result).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.seen[inverter]
	next := make(map[string]struct{}, len(snap))

	for key, v := range snap {
		f, ok := v.Float()
		if !ok {
			continue
		}
		m.values.WithLabelValues(inverter, key).Set(f)
		next[key] = struct{}{}
	}

	for key := range prev {
		if _, ok := next[key]; !ok {
			m.values.DeleteLabelValues(inverter, key)
		}
	}
	m.seen[inverter] = next
}

// ObserveStatus mirrors a link status snapshot.
func (m *Metrics) ObserveStatus(inverter string, s status.Snapshot) {
	m.health.WithLabelValues(inverter).Set(float64(s.Health))
	m.secondsInError.WithLabelValues(inverter).Set(float64(s.SecondsInError))
	if !s.LastSuccess.IsZero() {
		m.lastSuccess.WithLabelValues(inverter).Set(float64(s.LastSuccess.Unix()))
	}
}
