// Package relay republishes notification bus events to a Redis channel so
// other processes (a desktop notifier, a second terminal) can follow them.
package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/service"
)

const queueSize = 64

// Publisher is the part of *redis.Client the relay needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Subscriber is the part of the notification bus the relay needs.
type Subscriber interface {
	Subscribe(fn func(service.BusEvent)) (unsubscribe func())
}

// Relay forwards bus events to Redis. Bus handlers must not block, so events
// are queued and published from Run; when the queue is full the event is
// dropped and logged.
type Relay struct {
	pub     Publisher
	channel string
	log     zerolog.Logger
	queue   chan domain.BusMessage
}

func New(pub Publisher, channel string, log zerolog.Logger) *Relay {
	return &Relay{
		pub:     pub,
		channel: channel,
		log:     log.With().Str("component", "relay").Str("channel", channel).Logger(),
		queue:   make(chan domain.BusMessage, queueSize),
	}
}

// Attach subscribes the relay to bus and returns the unsubscribe function.
func (r *Relay) Attach(bus Subscriber) func() {
	return bus.Subscribe(r.enqueue)
}

func (r *Relay) enqueue(ev service.BusEvent) {
	msg := ev.Message()
	select {
	case r.queue <- msg:
	default:
		r.log.Warn().Str("event", msg.Event).Str("id", msg.Data.ID).Msg("relay queue full, event dropped")
	}
}

// Run publishes queued events until ctx is done. Publish failures are
// logged and do not stop the relay.
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-r.queue:
			if err := r.publish(ctx, msg); err != nil {
				r.log.Error().Err(err).Str("event", msg.Event).Msg("relay publish failed")
			}
		}
	}
}

func (r *Relay) publish(ctx context.Context, msg domain.BusMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("relay: encode: %w", err)
	}
	if err := r.pub.Publish(ctx, r.channel, body).Err(); err != nil {
		return fmt.Errorf("relay: publish: %w", err)
	}
	return nil
}
