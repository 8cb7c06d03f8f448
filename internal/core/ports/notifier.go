package ports

import "github.com/fleetpool/fleetdesk/internal/core/domain"

// Notifier is the publish side of the notification bus. Every user-facing
// component reports through it instead of rendering its own alerts.
type Notifier interface {
	Publish(n domain.Notification) domain.Notification
}
