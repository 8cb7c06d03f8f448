package handler

import (
	"github.com/fleetpool/fleetdesk/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type publishNotificationRequest struct {
	Kind    string `json:"kind"              validate:"required,oneof=success info warning danger"`
	Title   string `json:"title,omitempty"   validate:"max=120"`
	Message string `json:"message"           validate:"required,max=500"`
	Timeout int64  `json:"timeout,omitempty" validate:"gte=0,max=600000" label:"timeout"`
}

type listNotificationsResponse struct {
	Notifications []domain.NotificationPayload `json:"notifications"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Role          string       `json:"role,omitempty"`
	User          *domain.User `json:"user,omitempty"`
}

type capabilityResponse struct {
	Name    string `json:"name"`
	Allowed bool   `json:"allowed"`
}

type capabilitiesResponse struct {
	Role         string               `json:"role"`
	Capabilities []capabilityResponse `json:"capabilities"`
}

// --- Mapping ---

func toNotification(req publishNotificationRequest) domain.Notification {
	return domain.NotificationPayload{
		Kind:    domain.NotificationKind(req.Kind),
		Title:   req.Title,
		Message: req.Message,
		Timeout: req.Timeout,
	}.Notification()
}

func toPayloads(ns []domain.Notification) []domain.NotificationPayload {
	out := make([]domain.NotificationPayload, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Payload())
	}
	return out
}

func toCapabilitiesResponse(caps domain.CapabilityMap) capabilitiesResponse {
	rows := make([]capabilityResponse, 0, len(caps.Capabilities))
	for _, c := range caps.Capabilities {
		rows = append(rows, capabilityResponse{Name: c.Name, Allowed: c.Allowed})
	}
	return capabilitiesResponse{Role: caps.Role, Capabilities: rows}
}
