// internal/writer/builder.go
package writer

import (
	"errors"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tamzrod/saj-telemetry/internal/metrics"
	"github.com/tamzrod/saj-telemetry/internal/store"
)

// Sinks are the shared, process-wide destinations. A nil field disables
// that sink for every inverter.
type Sinks struct {
	MQTT        mqtt.Client
	TopicPrefix string
	QoS         byte

	Store   *store.Store
	Metrics *metrics.Metrics
	Cache   *Cache
}

// Build wires the enabled sinks for one inverter into a Fanout.
func Build(inverter string, s Sinks) (*Fanout, error) {
	if inverter == "" {
		return nil, errors.New("writer: inverter id required")
	}

	var (
		writers       []Writer
		statusWriters []StatusWriter
	)

	if s.Cache != nil {
		s.Cache.Register(inverter)
		cw := &cacheWriter{cache: s.Cache, inverter: inverter}
		writers = append(writers, cw)
		statusWriters = append(statusWriters, cw)
	}

	if s.Metrics != nil {
		mw := &metricsWriter{m: s.Metrics, inverter: inverter}
		writers = append(writers, mw)
		statusWriters = append(statusWriters, mw)
	}

	if s.Store != nil {
		writers = append(writers, &historyWriter{store: s.Store, inverter: inverter})
	}

	if s.MQTT != nil {
		writers = append(writers, newMQTTWriter(s.MQTT, s.TopicPrefix, inverter, s.QoS))
		statusWriters = append(statusWriters, newMQTTStatusWriter(s.MQTT, s.TopicPrefix, inverter, s.QoS))
	}

	return NewFanout(writers, statusWriters), nil
}
