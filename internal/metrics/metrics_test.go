// internal/metrics/metrics_test.go
package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/tamzrod/saj-telemetry/internal/status"
	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

// gauge returns the value of the first series of family name whose labels
// include all of want.
func gauge(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) (float64, bool) {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := 0
			for _, lp := range m.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
					match++
				}
			}
			if match != len(want) {
				continue
			}
			if m.GetGauge() != nil {
				return m.GetGauge().GetValue(), true
			}
			return m.GetCounter().GetValue(), true
		}
	}
	return 0, false
}

func TestObservePoll_NumericValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObservePoll("roof", telemetry.Snapshot{
		"todayenergy": telemetry.Decimal(decimal.RequireFromString("4.2"), 2),
		"pv1volt":     telemetry.Int(300),
		"sn":          telemetry.Text("R6SN0001"),
		"pv2volt":     telemetry.Unavailable(),
	}, nil)

	if v, ok := gauge(t, reg, "saj_value", map[string]string{"inverter": "roof", "key": "todayenergy"}); !ok || v != 4.2 {
		t.Fatalf("todayenergy: %v %v", v, ok)
	}
	if _, ok := gauge(t, reg, "saj_value", map[string]string{"inverter": "roof", "key": "sn"}); ok {
		t.Fatalf("text values must not become gauges")
	}
	if _, ok := gauge(t, reg, "saj_value", map[string]string{"inverter": "roof", "key": "pv2volt"}); ok {
		t.Fatalf("unavailable values must not become gauges")
	}
	if v, _ := gauge(t, reg, "saj_polls_total", map[string]string{"inverter": "roof", "result": "ok"}); v != 1 {
		t.Fatalf("polls_total ok: %v", v)
	}
}

func TestObservePoll_MissingKeyDropsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObservePoll("roof", telemetry.Snapshot{"pv1volt": telemetry.Int(300)}, nil)
	m.ObservePoll("roof", telemetry.Snapshot{}, errors.New("timeout"))

	if _, ok := gauge(t, reg, "saj_value", map[string]string{"inverter": "roof", "key": "pv1volt"}); ok {
		t.Fatalf("stale gauge must be removed")
	}
	if v, _ := gauge(t, reg, "saj_polls_total", map[string]string{"inverter": "roof", "result": "error"}); v != 1 {
		t.Fatalf("polls_total error: %v", v)
	}
}

func TestObserveStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	at := time.Unix(1700000000, 0)
	m.ObserveStatus("roof", status.Snapshot{Health: status.HealthError, SecondsInError: 12, LastSuccess: at})

	if v, _ := gauge(t, reg, "saj_health", map[string]string{"inverter": "roof"}); v != float64(status.HealthError) {
		t.Fatalf("health: %v", v)
	}
	if v, _ := gauge(t, reg, "saj_seconds_in_error", map[string]string{"inverter": "roof"}); v != 12 {
		t.Fatalf("seconds_in_error: %v", v)
	}
	if v, _ := gauge(t, reg, "saj_last_success_timestamp_seconds", map[string]string{"inverter": "roof"}); v != 1700000000 {
		t.Fatalf("last_success: %v", v)
	}
}
