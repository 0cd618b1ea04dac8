// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultTimeoutMs   = 5000
	DefaultIntervalMs  = 60000
	DefaultUnitID      = 1
	DefaultTopicPrefix = "saj"
	DefaultClientID    = "saj-telemetry"
	DefaultBaudRate    = 9600
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for i := range cfg.Inverters {
		inv := &cfg.Inverters[i]

		inv.Source.Transport = strings.ToLower(inv.Source.Transport)
		if inv.Source.Transport == "" {
			inv.Source.Transport = "tcp"
		}
		if inv.Source.UnitID == 0 {
			inv.Source.UnitID = DefaultUnitID
		}
		if inv.Source.TimeoutMs == 0 {
			inv.Source.TimeoutMs = DefaultTimeoutMs
		}
		if inv.Poll.IntervalMs == 0 {
			inv.Poll.IntervalMs = DefaultIntervalMs
		}

		if inv.Source.Transport == "rtu" {
			s := &inv.Source.Serial
			if s.BaudRate == 0 {
				s.BaudRate = DefaultBaudRate
			}
			if s.DataBits == 0 {
				s.DataBits = 8
			}
			if s.StopBits == 0 {
				s.StopBits = 1
			}
			s.Parity = strings.ToUpper(s.Parity)
			if s.Parity == "" {
				s.Parity = "N"
			}
		}
	}

	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	cfg.MQTT.TopicPrefix = strings.TrimRight(cfg.MQTT.TopicPrefix, "/")
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = DefaultClientID
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
