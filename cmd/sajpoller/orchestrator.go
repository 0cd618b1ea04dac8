// cmd/sajpoller/orchestrator.go
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/saj-telemetry/internal/poller"
	"github.com/tamzrod/saj-telemetry/internal/status"
	"github.com/tamzrod/saj-telemetry/internal/writer"
)

// sink is what the orchestrator delivers to.
type sink interface {
	writer.Writer
	writer.StatusWriter
}

// orchestrate owns one inverter's status state: it forwards every poll
// result, derives link status from it and ticks seconds_in_error at 1 Hz.
func orchestrate(ctx context.Context, in <-chan poller.PollResult, out sink, log zerolog.Logger) {
	tracker := status.NewTracker()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// full assert on start
	if err := out.WriteStatus(tracker.Snapshot()); err != nil {
		log.Warn().Err(err).Msg("status write failed on start")
	}

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			// --- data delivery ---
			if err := out.Write(res); err != nil {
				log.Warn().Err(err).Msg("writer error")
			}

			// --- status update ---
			snap, changed := tracker.Observe(res.Err, res.At)
			if !changed && res.Err != nil {
				continue
			}
			// LastSuccess moves on every good cycle
			if err := out.WriteStatus(snap); err != nil {
				log.Warn().Err(err).Msg("status write failed")
			}

		case <-secTicker.C:
			snap, changed := tracker.Tick()
			if !changed {
				continue
			}
			if err := out.WriteStatus(snap); err != nil {
				log.Warn().Err(err).Msg("status seconds tick write failed")
			}
		}
	}
}
