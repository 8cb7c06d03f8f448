package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
)

// SessionReader is the part of the session store the bridge exposes.
type SessionReader interface {
	Current() (domain.Session, bool)
}

// SessionHandler reports the signed-in session and its capabilities.
type SessionHandler struct {
	session      SessionReader
	capabilities ports.CapabilityClient
}

func NewSessionHandler(session SessionReader, capabilities ports.CapabilityClient) *SessionHandler {
	return &SessionHandler{session: session, capabilities: capabilities}
}

// Get returns the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	s, ok := h.session.Current()
	if !ok {
		return c.JSON(http.StatusOK, sessionResponse{})
	}
	user := s.User
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: true,
		Role:          string(s.Role),
		User:          &user,
	})
}

// Capabilities fetches the capability map of the signed-in user from the
// platform. Order follows the platform's document.
//
// @Summary      Capabilities of the signed-in user
// @Tags         session
// @Produce      json
// @Success      200  {object}  capabilitiesResponse
// @Failure      403  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/capabilities [get]
func (h *SessionHandler) Capabilities(c echo.Context) error {
	caps, err := h.capabilities.FetchCapabilities(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCapabilitiesResponse(caps))
}
