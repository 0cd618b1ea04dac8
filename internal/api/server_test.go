// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tamzrod/saj-telemetry/internal/metrics"
	"github.com/tamzrod/saj-telemetry/internal/poller"
	"github.com/tamzrod/saj-telemetry/internal/status"
	"github.com/tamzrod/saj-telemetry/internal/store"
	"github.com/tamzrod/saj-telemetry/internal/telemetry"
	"github.com/tamzrod/saj-telemetry/internal/writer"
)

type fakeHistory struct {
	recs      []store.Record
	err       error
	lastLimit int
}

func (f *fakeHistory) History(_ context.Context, _ string, limit int) ([]store.Record, error) {
	f.lastLimit = limit
	return f.recs, f.err
}

func newTestServer(t *testing.T, h History) (*Server, *writer.Cache) {
	t.Helper()

	cache := writer.NewCache()
	reg := prometheus.NewRegistry()

	fan, err := writer.Build("roof", writer.Sinks{Cache: cache, Metrics: metrics.New(reg)})
	if err != nil {
		t.Fatalf("writer.Build: %v", err)
	}
	_ = fan.Write(poller.PollResult{
		UnitID:   "roof",
		At:       time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Snapshot: telemetry.Snapshot{"pv1volt": telemetry.Int(300)},
	})
	_ = fan.WriteStatus(status.Snapshot{Health: status.HealthOK})

	return NewServer(":0", cache, h, reg, zerolog.Nop()), cache
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListInverters(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := get(t, s, "/api/v1/inverters")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var body struct {
		Inverters []struct {
			ID     string `json:"id"`
			Online bool   `json:"online"`
			State  string `json:"state"`
		} `json:"inverters"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || body.Inverters[0].ID != "roof" || !body.Inverters[0].Online || body.Inverters[0].State != "ok" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetInverter(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := get(t, s, "/api/v1/inverters/roof")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"pv1volt":300`) {
		t.Fatalf("values missing: %s", rec.Body.String())
	}

	if rec := get(t, s, "/api/v1/inverters/garage"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown inverter: status %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	h := &fakeHistory{recs: []store.Record{{Inverter: "roof", Values: json.RawMessage(`{"pv1volt":300}`)}}}
	s, _ := newTestServer(t, h)

	rec := get(t, s, "/api/v1/inverters/roof/history?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if h.lastLimit != 5 {
		t.Fatalf("limit not passed through: %d", h.lastLimit)
	}

	get(t, s, "/api/v1/inverters/roof/history?limit=999999")
	if h.lastLimit != maxHistoryLimit {
		t.Fatalf("limit must be capped, got %d", h.lastLimit)
	}

	if rec := get(t, s, "/api/v1/inverters/roof/history?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: status %d", rec.Code)
	}

	h.err = errors.New("disk full")
	if rec := get(t, s, "/api/v1/inverters/roof/history"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("store error: status %d", rec.Code)
	}
}

func TestHistory_Disabled(t *testing.T) {
	s, _ := newTestServer(t, nil)

	if rec := get(t, s, "/api/v1/inverters/roof/history"); rec.Code != http.StatusNotImplemented {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `saj_value{inverter="roof",key="pv1volt"} 300`) {
		t.Fatalf("gauge missing from scrape:\n%s", rec.Body.String())
	}
}
