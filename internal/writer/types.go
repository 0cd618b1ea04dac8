// internal/writer/types.go
package writer

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tamzrod/saj-telemetry/internal/poller"
	"github.com/tamzrod/saj-telemetry/internal/status"
)

// Writer delivers poll results to one sink.
type Writer interface {
	Write(res poller.PollResult) error
}

// StatusWriter is the delivery-only contract for link status.
// It receives a snapshot and writes it verbatim.
// No logic, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// publisher is the exact MQTT contract the writers use.
// mqtt.Client satisfies it.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}
