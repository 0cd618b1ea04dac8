// internal/writer/status_writer.go
package writer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/saj-telemetry/internal/status"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"
)

func availabilityTopic(prefix, inverter string) string {
	return prefix + "/" + inverter + "/status"
}

func linkTopic(prefix, inverter string) string {
	return prefix + "/" + inverter + "/link"
}

// mqttStatusWriter publishes link status for one inverter:
//
//	<prefix>/<inverter>/status  online | offline
//	<prefix>/<inverter>/link    JSON status snapshot
type mqttStatusWriter struct {
	pub      publisher
	prefix   string
	inverter string
	qos      byte

	needFull bool
	last     status.Snapshot
}

func newMQTTStatusWriter(pub publisher, prefix, inverter string, qos byte) *mqttStatusWriter {
	return &mqttStatusWriter{
		pub:      pub,
		prefix:   prefix,
		inverter: inverter,
		qos:      qos,
		needFull: true, // full re-assert on first write
		last:     status.Snapshot{Health: status.HealthUnknown},
	}
}

// WriteStatus delivers a status snapshot. Only changed topics are published;
// after any failure the next call re-asserts both topics.
func (sw *mqttStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.pub == nil {
		return errors.New("status writer: disabled")
	}

	if s.SecondsInError > status.MaxSecondsInError {
		s.SecondsInError = status.MaxSecondsInError
	}

	if sw.needFull {
		if err := sw.publishAvailability(s); err != nil {
			return fmt.Errorf("status writer: full assert failed: %w", err)
		}
		if err := sw.publishLink(s); err != nil {
			return fmt.Errorf("status writer: full assert failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	if sw.last.Online() != s.Online() {
		if err := sw.publishAvailability(s); err != nil {
			errs = append(errs, fmt.Sprintf("availability write failed: %v", err))
		}
	}

	if !sameStatus(sw.last, s) {
		if err := sw.publishLink(s); err != nil {
			errs = append(errs, fmt.Sprintf("link write failed: %v", err))
		}
	}

	if len(errs) > 0 {
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}

func (sw *mqttStatusWriter) publishAvailability(s status.Snapshot) error {
	payload := payloadOffline
	if s.Online() {
		payload = payloadOnline
	}
	return publishWait(sw.pub, availabilityTopic(sw.prefix, sw.inverter), sw.qos, payload)
}

func (sw *mqttStatusWriter) publishLink(s status.Snapshot) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return publishWait(sw.pub, linkTopic(sw.prefix, sw.inverter), sw.qos, string(body))
}

func sameStatus(a, b status.Snapshot) bool {
	return a.Health == b.Health &&
		a.LastErrorCode == b.LastErrorCode &&
		a.LastError == b.LastError &&
		a.SecondsInError == b.SecondsInError &&
		a.LastSuccess.Equal(b.LastSuccess)
}
