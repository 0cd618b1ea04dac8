// internal/writer/mqtt.go
package writer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/tamzrod/saj-telemetry/internal/config"
	"github.com/tamzrod/saj-telemetry/internal/poller"
	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

// publishTimeout bounds every broker round trip.
const publishTimeout = 5 * time.Second

// payloadEmpty stands in for empty text values. A zero-length retained
// payload would delete the retained message instead.
const payloadEmpty = "none"

// ConnectMQTT dials the broker. The service availability topic
// <prefix>/status is "online" while connected and "offline" as last will.
func ConnectMQTT(cfg config.MQTTConfig, log zerolog.Logger) (mqtt.Client, error) {
	serviceTopic := cfg.TopicPrefix + "/status"

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(publishTimeout).
		SetWill(serviceTopic, payloadOffline, cfg.QoS, true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.OnConnect = func(c mqtt.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
		if err := publishWait(c, serviceTopic, cfg.QoS, payloadOnline); err != nil {
			log.Warn().Err(err).Msg("mqtt service status publish failed")
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", cfg.Broker).Msg("mqtt connection lost")
	}

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, token.Error())
	}
	return c, nil
}

func valueTopic(prefix, inverter, key string) string {
	return prefix + "/" + inverter + "/" + key
}

func stateTopic(prefix, inverter string) string {
	return prefix + "/" + inverter + "/state"
}

// statePayload is the JSON document on the state topic.
type statePayload struct {
	At     time.Time          `json:"at"`
	Error  string             `json:"error,omitempty"`
	Values telemetry.Snapshot `json:"values"`
}

// mqttWriter publishes one retained message per key plus a JSON state
// document. Keys that drop out of the snapshot get their retained
// message cleared.
type mqttWriter struct {
	pub      publisher
	prefix   string
	inverter string
	qos      byte

	published map[string]struct{}
}

func newMQTTWriter(pub publisher, prefix, inverter string, qos byte) *mqttWriter {
	return &mqttWriter{
		pub:       pub,
		prefix:    prefix,
		inverter:  inverter,
		qos:       qos,
		published: make(map[string]struct{}),
	}
}

func (w *mqttWriter) Write(res poller.PollResult) error {
	var errs []string

	for _, key := range res.Snapshot.Keys() {
		topic := valueTopic(w.prefix, w.inverter, key)
		payload := res.Snapshot[key].String()
		if payload == "" {
			payload = payloadEmpty
		}
		if err := w.publish(topic, payload); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		w.published[key] = struct{}{}
	}

	for key := range w.published {
		if _, ok := res.Snapshot[key]; ok {
			continue
		}
		// empty retained payload removes the retained message
		if err := w.publish(valueTopic(w.prefix, w.inverter, key), ""); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		delete(w.published, key)
	}

	state := statePayload{At: res.At, Values: res.Snapshot}
	if state.Values == nil {
		state.Values = telemetry.Snapshot{}
	}
	if res.Err != nil {
		state.Error = res.Err.Error()
	}
	body, err := json.Marshal(state)
	if err != nil {
		errs = append(errs, fmt.Sprintf("mqtt: encode state: %v", err))
	} else if err := w.publish(stateTopic(w.prefix, w.inverter), string(body)); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New("mqtt writer: " + strings.Join(errs, " | "))
	}
	return nil
}

func (w *mqttWriter) publish(topic, payload string) error {
	return publishWait(w.pub, topic, w.qos, payload)
}

func publishWait(pub publisher, topic string, qos byte, payload string) error {
	token := pub.Publish(topic, qos, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("topic=%s err=publish timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("topic=%s err=%v", topic, err)
	}
	return nil
}
