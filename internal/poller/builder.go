// internal/poller/builder.go
package poller

import (
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/saj-telemetry/internal/config"
	"github.com/tamzrod/saj-telemetry/internal/decoder"
	"github.com/tamzrod/saj-telemetry/internal/fault"
	pmodbus "github.com/tamzrod/saj-telemetry/internal/poller/modbus"
	"github.com/tamzrod/saj-telemetry/internal/sticky"
)

// Build constructs a Poller for one inverter and wires its transport.
// The session is opened lazily on the first read and closed after every
// cycle, so there is no connection to fail fast on here.
func Build(inv cfg.InverterConfig, faults fault.Tables, log zerolog.Logger) (*Poller, error) {
	client, err := pmodbus.New(pmodbus.Config{
		Transport: inv.Source.Transport,
		Endpoint:  inv.Source.Endpoint,
		Serial: pmodbus.SerialConfig{
			Device:   inv.Source.Serial.Device,
			BaudRate: inv.Source.Serial.BaudRate,
			DataBits: inv.Source.Serial.DataBits,
			Parity:   inv.Source.Serial.Parity,
			StopBits: inv.Source.Serial.StopBits,
		},
		Timeout: time.Duration(inv.Source.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if inv.Timezone != "" {
		if loc, err = time.LoadLocation(inv.Timezone); err != nil {
			return nil, err
		}
	}

	rt := decoder.NewRealtime(loc, log.With().Str("inverter", inv.ID).Logger())
	rt.Faults = faults

	return New(
		Config{
			UnitID:   inv.ID,
			SlaveID:  inv.Source.UnitID,
			Interval: time.Duration(inv.Poll.IntervalMs) * time.Millisecond,
		},
		client,
		rt,
		sticky.NewSet(sticky.DefaultDescriptors(), inv.Sticky.ZeroAsMissing),
		log,
	)
}
