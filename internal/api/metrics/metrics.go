// Package metrics defines and registers all custom Prometheus metrics for
// fleetdesk. It is the single source of truth for metric names, labels, and
// help strings.
//
// The collectors register with the default registry on import; HTTP metrics
// come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/service"
)

const namespace = "fleetdesk"

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsPublishedTotal counts notifications published on the bus.
// Label:
//   - kind: "success", "info", "warning" or "danger"
var NotificationsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
		Help:      "Total number of notifications published, by kind.",
	},
	[]string{"kind"},
)

// NotificationsRetractedTotal counts notifications removed from the bus.
// Label:
//   - reason: "expired" or "dismissed"
var NotificationsRetractedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_retracted_total",
		Help:      "Total number of notifications retracted, by reason.",
	},
	[]string{"reason"},
)

// NotificationsActive tracks the number of visible notifications.
var NotificationsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_active",
		Help:      "Current number of notifications on the bus.",
	},
)

// ── Connectivity metrics ──────────────────────────────────────────────────────

// PlatformOnline is 1 while the platform is reachable and 0 otherwise.
var PlatformOnline = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "platform_online",
		Help:      "Whether the fleet platform is currently reachable (1) or not (0).",
	},
)

// ConnectivityTransitionsTotal counts reachability flips.
// Label:
//   - to: "online" or "offline"
var ConnectivityTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connectivity_transitions_total",
		Help:      "Total number of connectivity transitions, by new state.",
	},
	[]string{"to"},
)

// ── Bridge metrics ────────────────────────────────────────────────────────────

// StreamClients tracks open notification stream websockets.
var StreamClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_clients",
		Help:      "Current number of connected notification stream clients.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthOutcomesTotal counts sign-in and registration outcomes as announced
// on the bus.
// Label:
//   - outcome: "success" or "failure"
var AuthOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_outcomes_total",
		Help:      "Total number of sign-in and registration outcomes.",
	},
	[]string{"outcome"},
)

// Subscriber is the part of the notification bus metrics observe.
type Subscriber interface {
	Subscribe(fn func(service.BusEvent)) (unsubscribe func())
}

// ChangeNotifier is the part of the connectivity monitor metrics observe.
type ChangeNotifier interface {
	Online() bool
	OnChange(fn func(online bool)) (cancel func())
}

// ObserveBus records bus activity until the returned function is called.
func ObserveBus(bus Subscriber) func() {
	return bus.Subscribe(func(ev service.BusEvent) {
		switch ev.Type {
		case service.EventPublished:
			NotificationsPublishedTotal.WithLabelValues(string(ev.Notification.Kind)).Inc()
			NotificationsActive.Inc()
			if outcome, ok := authOutcome(ev.Notification); ok {
				AuthOutcomesTotal.WithLabelValues(outcome).Inc()
			}
		case service.EventRetracted:
			NotificationsRetractedTotal.WithLabelValues(string(ev.Reason)).Inc()
			NotificationsActive.Dec()
		}
	})
}

// ObserveConnectivity mirrors the monitor into PlatformOnline until the
// returned function is called.
func ObserveConnectivity(m ChangeNotifier) func() {
	PlatformOnline.Set(boolGauge(m.Online()))
	return m.OnChange(func(online bool) {
		PlatformOnline.Set(boolGauge(online))
		to := "offline"
		if online {
			to = "online"
		}
		ConnectivityTransitionsTotal.WithLabelValues(to).Inc()
	})
}

func authOutcome(n domain.Notification) (string, bool) {
	switch n.Title {
	case service.TitleSignedIn, service.TitleAccountCreated:
		return "success", true
	case service.TitleSignInFailed, service.TitleRegistrationFailed:
		return "failure", true
	}
	return "", false
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
