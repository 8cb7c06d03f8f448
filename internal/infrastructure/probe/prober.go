// Package probe derives platform reachability by polling its health
// endpoint. A Prober is the environment signal source behind the
// connectivity monitor.
package probe

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/ports"
	"github.com/fleetpool/fleetdesk/internal/pkg/clock"
)

// Pinger checks that the platform answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober polls a Pinger and notifies subscribers when reachability flips.
// It starts out assuming the platform is reachable.
type Prober struct {
	pinger   Pinger
	clock    clock.Clock
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	online bool
	subs   map[int]func(bool)
	nextID int
}

var _ ports.ReachabilitySource = (*Prober)(nil)

// New returns a Prober polling every interval. Each probe gets at most one
// interval to answer.
func New(pinger Pinger, clk clock.Clock, interval time.Duration, log zerolog.Logger) *Prober {
	return &Prober{
		pinger:   pinger,
		clock:    clk,
		interval: interval,
		timeout:  interval,
		log:      log.With().Str("component", "probe").Logger(),
		online:   true,
		subs:     make(map[int]func(bool)),
	}
}

// Subscribe registers fn for went-online / went-offline transitions.
func (p *Prober) Subscribe(fn func(online bool)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// Online reports the last observed reachability.
func (p *Prober) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Check probes once and returns the resulting reachability.
func (p *Prober) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.pinger.Ping(ctx)
	cancel()

	online := err == nil
	p.mu.Lock()
	if online == p.online {
		p.mu.Unlock()
		return online
	}
	p.online = online
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]func(bool), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, p.subs[id])
	}
	p.mu.Unlock()

	if online {
		p.log.Info().Msg("platform reachable")
	} else {
		p.log.Warn().Err(err).Msg("platform unreachable")
	}
	for _, h := range handlers {
		h(online)
	}
	return online
}

// Run probes immediately and then on every tick until ctx is done.
func (p *Prober) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}
