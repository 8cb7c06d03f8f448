package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
)

// NotificationStore is the part of the notification bus the bridge exposes.
type NotificationStore interface {
	Publish(n domain.Notification) domain.Notification
	Dismiss(id string) bool
	List() []domain.Notification
}

// NotificationHandler lets out-of-process observers read and drive the
// notification bus.
type NotificationHandler struct {
	bus NotificationStore
}

func NewNotificationHandler(bus NotificationStore) *NotificationHandler {
	return &NotificationHandler{bus: bus}
}

// List returns the visible notifications in publish order.
//
// @Summary      List visible notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  listNotificationsResponse
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, listNotificationsResponse{Notifications: toPayloads(h.bus.List())})
}

// Publish puts a notification on the bus.
//
// @Summary      Publish a notification
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        body  body      publishNotificationRequest  true  "Notification"
// @Success      201   {object}  domain.NotificationPayload
// @Failure      400   {object}  errorResponse
// @Router       /v1/notifications [post]
func (h *NotificationHandler) Publish(c echo.Context) error {
	var req publishNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	n := h.bus.Publish(toNotification(req))
	return c.JSON(http.StatusCreated, n.Payload())
}

// Dismiss removes a notification before its timeout.
//
// @Summary      Dismiss a notification
// @Tags         notifications
// @Param        id   path      string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/notifications/{id} [delete]
func (h *NotificationHandler) Dismiss(c echo.Context) error {
	if !h.bus.Dismiss(c.Param("id")) {
		return domain.ErrNotificationNotFound
	}
	return c.NoContent(http.StatusNoContent)
}
