package domain

import "time"

// NotificationKind classifies how a notification is presented.
type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindInfo    NotificationKind = "info"
	KindWarning NotificationKind = "warning"
	KindDanger  NotificationKind = "danger"
)

// DefaultNotificationTTL applies when a notification is published without a TTL.
const DefaultNotificationTTL = 4000 * time.Millisecond

// Event names used when notifications leave the process (bridge stream, relay).
const (
	EventNotify  = "app:notify"
	EventDismiss = "app:dismiss"
)

// Valid reports whether k is one of the four notification kinds.
func (k NotificationKind) Valid() bool {
	switch k {
	case KindSuccess, KindInfo, KindWarning, KindDanger:
		return true
	}
	return false
}

// Notification is a transient, user-facing status message.
type Notification struct {
	ID      string
	Kind    NotificationKind
	Title   string
	Message string
	TTL     time.Duration
}

// NotificationPayload is the wire shape of a notification:
// {kind, title?, message, timeout?} with timeout in milliseconds.
type NotificationPayload struct {
	ID      string           `json:"id,omitempty"`
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title,omitempty"`
	Message string           `json:"message"`
	Timeout int64            `json:"timeout,omitempty"`
}

// Payload converts n to its wire shape.
func (n Notification) Payload() NotificationPayload {
	return NotificationPayload{
		ID:      n.ID,
		Kind:    n.Kind,
		Title:   n.Title,
		Message: n.Message,
		Timeout: n.TTL.Milliseconds(),
	}
}

// Notification converts a wire payload back into a Notification. The ID is
// left for the bus to assign.
func (p NotificationPayload) Notification() Notification {
	return Notification{
		Kind:    p.Kind,
		Title:   p.Title,
		Message: p.Message,
		TTL:     time.Duration(p.Timeout) * time.Millisecond,
	}
}

// BusMessage is a bus event as it leaves the process: the event name
// (EventNotify or EventDismiss) and the notification it concerns.
type BusMessage struct {
	Event  string              `json:"event"`
	Data   NotificationPayload `json:"data"`
	Reason string              `json:"reason,omitempty"`
}
