package service

import (
	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
)

// RoleGate admits protected content only for an allowed role. Every denied
// evaluation publishes exactly one warning; the gate holds no state of its
// own and never touches the session.
type RoleGate struct {
	bus ports.Notifier
}

// NewRoleGate returns a gate reporting denials to bus.
func NewRoleGate(bus ports.Notifier) *RoleGate {
	return &RoleGate{bus: bus}
}

// Admit reports whether current is present and in allow. A denial
// publishes a warning notification.
func (g *RoleGate) Admit(current domain.Role, allow ...domain.Role) bool {
	if current.In(allow...) {
		return true
	}
	g.bus.Publish(Warning("Access denied", deniedMessage(current)))
	return false
}

func deniedMessage(current domain.Role) string {
	if current == domain.RoleNone {
		return "Sign in to view this page."
	}
	return "Your " + string(current) + " account cannot view this page."
}

// Guard evaluates the gate once and returns content() when admitted or
// fallback() otherwise. A nil fallback renders the zero value.
func Guard[T any](g *RoleGate, current domain.Role, allow []domain.Role, content, fallback func() T) T {
	if g.Admit(current, allow...) {
		return content()
	}
	var zero T
	if fallback == nil {
		return zero
	}
	return fallback()
}
