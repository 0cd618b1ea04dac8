// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run polls once immediately, then on every tick, and hands each result
// to the registered listeners. One goroutine per inverter. No overlap:
// a slow cycle delays the next tick instead of running beside it.
// Ticks with no listeners are skipped.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.tick()

	for {
		select {
		case <-ctx.Done():
			if err := p.Close(); err != nil {
				p.log.Debug().Err(err).Msg("close session")
			}
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	if p.ListenerCount() == 0 {
		p.log.Debug().Msg("no listeners, skipping poll")
		return
	}
	p.dispatch(p.PollOnce())
}
