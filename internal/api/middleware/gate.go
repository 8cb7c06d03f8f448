package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
)

// ContextKeyRole is where RequireRole stores the admitted role.
const ContextKeyRole = "role"

// Admitter decides whether a role may see a resource.
type Admitter interface {
	Admit(current domain.Role, allow ...domain.Role) bool
}

// RoleSource yields the current session's role.
type RoleSource interface {
	Role() domain.Role
}

// RequireRole admits the request only when the current session role is in
// allow. The decision, and the denial notification, belong to the gate; a
// denied request gets 403.
func RequireRole(gate Admitter, session RoleSource, allow ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := session.Role()
			if !gate.Admit(role, allow...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": domain.ErrForbidden.Error()})
			}
			c.Set(ContextKeyRole, role)
			return next(c)
		}
	}
}
