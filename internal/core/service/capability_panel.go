package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
)

// PanelState is the render state of a CapabilityPanel.
type PanelState string

const (
	PanelLoading PanelState = "loading"
	PanelError   PanelState = "error"
	PanelLoaded  PanelState = "loaded"
)

// PanelView is everything needed to draw the panel.
type PanelView struct {
	State   PanelState
	Role    domain.Role
	Rows    []domain.Capability
	Message string // warning text in PanelError
}

// CapabilityPanel projects the capability map of the current role. One
// panel value is one mount: it fetches exactly once and never retries or
// caches. Remounting means building a new panel.
type CapabilityPanel struct {
	client ports.CapabilityClient
	role   domain.Role
	log    zerolog.Logger

	once sync.Once
	mu   sync.Mutex
	view PanelView
}

// NewCapabilityPanel returns a panel in the loading state.
func NewCapabilityPanel(client ports.CapabilityClient, role domain.Role, log zerolog.Logger) *CapabilityPanel {
	return &CapabilityPanel{
		client: client,
		role:   role,
		log:    log,
		view:   PanelView{State: PanelLoading, Role: role},
	}
}

// Mount performs the panel's single fetch and returns the resulting view.
// Later calls return the current view without fetching.
func (p *CapabilityPanel) Mount(ctx context.Context) PanelView {
	p.once.Do(func() {
		caps, err := p.client.FetchCapabilities(ctx)

		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.log.Warn().Err(err).Str("role", string(p.role)).Msg("capability fetch failed")
			p.view = PanelView{
				State:   PanelError,
				Role:    p.role,
				Message: domain.UserMessage(err, err.Error()),
			}
			return
		}
		role := p.role
		if caps.Role != "" {
			role = domain.ResolveRole(caps.Role)
		}
		p.view = PanelView{State: PanelLoaded, Role: role, Rows: caps.Capabilities}
	})
	return p.View()
}

// View returns the current render state.
func (p *CapabilityPanel) View() PanelView {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.view
	v.Rows = append([]domain.Capability(nil), p.view.Rows...)
	return v
}
