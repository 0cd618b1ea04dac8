// internal/poller/listeners.go
package poller

// AddListener registers fn to receive every poll result.
// Listeners run on the poller goroutine and must not block.
// The returned func detaches fn; detaching the last listener closes the
// transport session. It is reopened on the next poll.
func (p *Poller) AddListener(fn func(PollResult)) (remove func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	var done bool
	return func() {
		p.mu.Lock()
		if done {
			p.mu.Unlock()
			return
		}
		done = true
		delete(p.listeners, id)
		empty := len(p.listeners) == 0
		p.mu.Unlock()

		if empty {
			if err := p.Close(); err != nil {
				p.log.Debug().Err(err).Msg("close session")
			}
		}
	}
}

// ListenerCount returns the number of attached listeners.
func (p *Poller) ListenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

func (p *Poller) dispatch(res PollResult) {
	p.mu.Lock()
	fns := make([]func(PollResult), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(res)
	}
}
