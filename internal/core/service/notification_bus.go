package service

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/pkg/clock"
)

// BusEventType tells subscribers what happened to a notification.
type BusEventType string

const (
	EventPublished BusEventType = "published"
	EventRetracted BusEventType = "retracted"
)

// RetractReason says why a notification left the list.
type RetractReason string

const (
	ReasonExpired   RetractReason = "expired"
	ReasonDismissed RetractReason = "dismissed"
)

// BusEvent is delivered to subscribers on publish and on retraction.
type BusEvent struct {
	Type         BusEventType
	Notification domain.Notification
	Reason       RetractReason // set for EventRetracted
}

// Message converts ev to its out-of-process form.
func (ev BusEvent) Message() domain.BusMessage {
	msg := domain.BusMessage{Event: domain.EventNotify, Data: ev.Notification.Payload()}
	if ev.Type == EventRetracted {
		msg.Event = domain.EventDismiss
		msg.Reason = string(ev.Reason)
	}
	return msg
}

type busEntry struct {
	n     domain.Notification
	timer *clock.Timer
}

// NotificationBus is the in-process publish/subscribe channel for transient
// status messages. It owns the visible list: each published notification is
// retracted after its TTL unless dismissed first. Removal never reorders the
// remaining entries.
type NotificationBus struct {
	clock clock.Clock
	log   zerolog.Logger

	mu      sync.Mutex
	ttl     time.Duration
	entries []*busEntry
	subs    map[int]func(BusEvent)
	nextSub int
	closed  bool
}

// NewNotificationBus returns an empty bus. Each bus is independent; tests
// build one per case.
func NewNotificationBus(clk clock.Clock, log zerolog.Logger) *NotificationBus {
	return &NotificationBus{
		clock: clk,
		log:   log,
		ttl:   domain.DefaultNotificationTTL,
		subs:  make(map[int]func(BusEvent)),
	}
}

// SetDefaultTTL changes the lifetime given to notifications published
// without one. Non-positive values are ignored.
func (b *NotificationBus) SetDefaultTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	b.mu.Lock()
	b.ttl = ttl
	b.mu.Unlock()
}

// Publish appends n to the list, schedules its retraction and delivers it
// synchronously to every current subscriber. A missing ID or TTL is filled
// in; the stored notification is returned.
func (b *NotificationBus) Publish(n domain.Notification) domain.Notification {
	if n.ID == "" {
		n.ID = newNotificationID()
	}
	b.mu.Lock()
	if n.TTL <= 0 {
		n.TTL = b.ttl
	}
	if b.closed {
		b.mu.Unlock()
		b.log.Debug().Str("id", n.ID).Msg("publish on closed bus ignored")
		return n
	}
	entry := &busEntry{n: n}
	b.entries = append(b.entries, entry)
	b.mu.Unlock()

	// Scheduled outside the lock: a fake clock with a zero TTL fires inline.
	id := n.ID
	timer := b.clock.AfterFunc(n.TTL, func() { b.retract(id, ReasonExpired) })
	b.mu.Lock()
	entry.timer = timer
	b.mu.Unlock()

	b.log.Debug().
		Str("id", n.ID).
		Str("kind", string(n.Kind)).
		Dur("ttl", n.TTL).
		Msg("notification published")

	b.emit(BusEvent{Type: EventPublished, Notification: n})
	return n
}

// Dismiss removes the notification with the given id and cancels its pending
// retraction. It reports whether anything was removed; dismissing an unknown
// or already retracted id is a no-op.
func (b *NotificationBus) Dismiss(id string) bool {
	return b.retract(id, ReasonDismissed)
}

// Subscribe registers fn for every future publish and retraction. The
// returned function unsubscribes and may be called more than once.
func (b *NotificationBus) Subscribe(fn func(BusEvent)) (unsubscribe func()) {
	b.mu.Lock()
	key := b.nextSub
	b.nextSub++
	b.subs[key] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, key)
			b.mu.Unlock()
		})
	}
}

// List returns the visible notifications in publish order.
func (b *NotificationBus) List() []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Notification, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e.n)
	}
	return out
}

// Close cancels every pending retraction and drops the list. Later
// publishes are ignored.
func (b *NotificationBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	b.entries = nil
	b.closed = true
}

func (b *NotificationBus) retract(id string, reason RetractReason) bool {
	b.mu.Lock()
	idx := slices.IndexFunc(b.entries, func(e *busEntry) bool { return e.n.ID == id })
	if idx < 0 {
		b.mu.Unlock()
		return false
	}
	entry := b.entries[idx]
	b.entries = slices.Delete(b.entries, idx, idx+1)
	b.mu.Unlock()

	if entry.timer != nil {
		entry.timer.Stop()
	}

	b.log.Debug().Str("id", id).Str("reason", string(reason)).Msg("notification retracted")
	b.emit(BusEvent{Type: EventRetracted, Notification: entry.n, Reason: reason})
	return true
}

// emit delivers ev to a snapshot of the subscribers, outside the lock, so a
// handler may publish or dismiss without deadlocking.
func (b *NotificationBus) emit(ev BusEvent) {
	b.mu.Lock()
	keys := make([]int, 0, len(b.subs))
	for k := range b.subs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	handlers := make([]func(BusEvent), 0, len(keys))
	for _, k := range keys {
		handlers = append(handlers, b.subs[k])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func newNotificationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Success builds a success notification with the default TTL.
func Success(title, message string) domain.Notification {
	return domain.Notification{Kind: domain.KindSuccess, Title: title, Message: message}
}

// Info builds an info notification with the default TTL.
func Info(title, message string) domain.Notification {
	return domain.Notification{Kind: domain.KindInfo, Title: title, Message: message}
}

// Warning builds a warning notification with the default TTL.
func Warning(title, message string) domain.Notification {
	return domain.Notification{Kind: domain.KindWarning, Title: title, Message: message}
}

// Danger builds a danger notification with the default TTL.
func Danger(title, message string) domain.Notification {
	return domain.Notification{Kind: domain.KindDanger, Title: title, Message: message}
}
