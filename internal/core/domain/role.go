package domain

import (
	"fmt"
	"strings"
)

// Role is the platform role of an authenticated user.
type Role string

const (
	// RoleNone means no role has been resolved yet (not signed in).
	RoleNone     Role = ""
	RoleInvestor Role = "investor"
	RoleOperator Role = "operator"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleInvestor, RoleOperator, RoleDriver, RoleAdmin}

// ResolveRole maps the role string returned by the "current user" lookup
// onto the closed role set. operator, driver and admin are taken verbatim;
// anything else, including an empty value, falls back to investor.
func ResolveRole(raw string) Role {
	switch Role(raw) {
	case RoleOperator, RoleDriver, RoleAdmin:
		return Role(raw)
	default:
		return RoleInvestor
	}
}

// ParseRole is the strict counterpart of ResolveRole, used for form hints
// and configuration where an unknown value is a mistake.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if r.Valid() {
		return r, nil
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, raw)
}

// Valid reports whether r is one of the four platform roles.
func (r Role) Valid() bool {
	switch r {
	case RoleInvestor, RoleOperator, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// In reports whether r is present and a member of allow.
func (r Role) In(allow ...Role) bool {
	if r == RoleNone {
		return false
	}
	for _, a := range allow {
		if a == r {
			return true
		}
	}
	return false
}

// Title returns the role name for headings ("Operator").
func (r Role) Title() string {
	if r == RoleNone {
		return "Guest"
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}
