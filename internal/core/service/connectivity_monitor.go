package service

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/ports"
)

// OfflineBanner is shown for the whole duration of an outage.
const OfflineBanner = "You are offline. Changes and new data will not load until the connection is restored."

// ConnectivityMonitor tracks network reachability. It reflects a continuous
// condition, so it renders its own persistent banner instead of publishing
// timed notifications.
type ConnectivityMonitor struct {
	log zerolog.Logger

	mu        sync.Mutex
	online    bool
	detach    func()
	observers map[int]func(bool)
	nextObs   int
}

// NewConnectivityMonitor returns a monitor that starts online.
func NewConnectivityMonitor(log zerolog.Logger) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		log:       log,
		online:    true,
		observers: make(map[int]func(bool)),
	}
}

// Mount registers the monitor's listener with src. Mounting again first
// detaches the previous registration.
func (m *ConnectivityMonitor) Mount(src ports.ReachabilitySource) {
	m.Unmount()
	unsubscribe := src.Subscribe(m.set)

	m.mu.Lock()
	m.detach = unsubscribe
	m.mu.Unlock()
}

// Unmount deregisters the listener installed by Mount. Safe to call when
// nothing is mounted.
func (m *ConnectivityMonitor) Unmount() {
	m.mu.Lock()
	detach := m.detach
	m.detach = nil
	m.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Mounted reports whether a listener is currently registered.
func (m *ConnectivityMonitor) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detach != nil
}

// Online reports the last known reachability.
func (m *ConnectivityMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Banner returns the offline banner text, or "" while online.
func (m *ConnectivityMonitor) Banner() string {
	if m.Online() {
		return ""
	}
	return OfflineBanner
}

// OnChange calls fn after every transition. The returned function stops
// the notifications.
func (m *ConnectivityMonitor) OnChange(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	key := m.nextObs
	m.nextObs++
	m.observers[key] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, key)
		m.mu.Unlock()
	}
}

func (m *ConnectivityMonitor) set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	observers := make([]func(bool), 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.mu.Unlock()

	if online {
		m.log.Info().Msg("connectivity restored")
	} else {
		m.log.Warn().Msg("connectivity lost")
	}
	for _, fn := range observers {
		fn(online)
	}
}
