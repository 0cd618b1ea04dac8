// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if len(cfg.Inverters) == 0 {
		return fmt.Errorf("at least one inverter is required")
	}

	// key = transport | endpoint-or-device | unit_id
	owners := make(map[string]string)
	ids := make(map[string]struct{})

	for _, inv := range cfg.Inverters {
		if inv.ID == "" {
			return fmt.Errorf("inverter id is required")
		}
		if _, dup := ids[inv.ID]; dup {
			return fmt.Errorf("inverter %q: duplicate id", inv.ID)
		}
		ids[inv.ID] = struct{}{}

		// ids end up in MQTT topics and URLs
		if strings.ContainsAny(inv.ID, "/#+ ") {
			return fmt.Errorf("inverter %q: id must not contain '/', '#', '+' or spaces", inv.ID)
		}

		src := inv.Source
		transport := strings.ToLower(src.Transport)
		if transport == "" {
			transport = "tcp"
		}

		var addr string
		switch transport {
		case "tcp":
			if src.Endpoint == "" {
				return fmt.Errorf("inverter %q: source.endpoint is required for tcp", inv.ID)
			}
			addr = src.Endpoint
		case "rtu":
			if src.Serial.Device == "" {
				return fmt.Errorf("inverter %q: source.serial.device is required for rtu", inv.ID)
			}
			switch strings.ToUpper(src.Serial.Parity) {
			case "", "N", "E", "O":
			default:
				return fmt.Errorf("inverter %q: serial parity must be N, E or O", inv.ID)
			}
			addr = src.Serial.Device
		default:
			return fmt.Errorf("inverter %q: unsupported transport %q", inv.ID, src.Transport)
		}

		if src.TimeoutMs < 0 {
			return fmt.Errorf("inverter %q: timeout_ms must be >= 0", inv.ID)
		}
		if inv.Poll.IntervalMs < 0 {
			return fmt.Errorf("inverter %q: poll.interval_ms must be >= 0", inv.ID)
		}
		if inv.Timezone != "" {
			if _, err := time.LoadLocation(inv.Timezone); err != nil {
				return fmt.Errorf("inverter %q: timezone: %v", inv.ID, err)
			}
		}

		unitID := src.UnitID
		if unitID == 0 {
			unitID = DefaultUnitID
		}

		key := fmt.Sprintf("%s|%s|%d", transport, addr, unitID)
		if prev, exists := owners[key]; exists {
			return fmt.Errorf(
				"source collision: %s unit_id=%d used by inverters %q and %q",
				addr,
				unitID,
				prev,
				inv.ID,
			)
		}
		owners[key] = inv.ID
	}

	if cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	if cfg.Storage.RetentionDays < 0 {
		return fmt.Errorf("storage.retention_days must be >= 0")
	}

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %v", err)
		}
	}
	switch cfg.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json")
	}

	return nil
}
