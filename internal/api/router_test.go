package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/service"
	"github.com/fleetpool/fleetdesk/internal/pkg/clock"
)

type stubCapabilityClient struct {
	fetchFn func(ctx context.Context) (domain.CapabilityMap, error)
}

func (s *stubCapabilityClient) FetchCapabilities(ctx context.Context) (domain.CapabilityMap, error) {
	return s.fetchFn(ctx)
}

type stubReachability struct {
	fn func(bool)
}

func (s *stubReachability) Subscribe(fn func(bool)) func() {
	s.fn = fn
	return func() { s.fn = nil }
}

type bridge struct {
	e       http.Handler
	bus     *service.NotificationBus
	session *service.SessionStore
	reach   *stubReachability
	caps    *stubCapabilityClient
}

func newBridge(t *testing.T) *bridge {
	t.Helper()
	log := zerolog.Nop()
	bus := service.NewNotificationBus(clock.Fake(time.Unix(0, 0)), log)
	monitor := service.NewConnectivityMonitor(log)
	reach := &stubReachability{}
	monitor.Mount(reach)
	session := service.NewSessionStore(nil, log)
	caps := &stubCapabilityClient{fetchFn: func(context.Context) (domain.CapabilityMap, error) {
		return domain.CapabilityMap{Role: "operator", Capabilities: []domain.Capability{
			{Name: "view_fleet", Allowed: true},
			{Name: "edit_payouts", Allowed: false},
		}}, nil
	}}

	e := NewRouter(Deps{
		Bus:          bus,
		Monitor:      monitor,
		Session:      session,
		Gate:         service.NewRoleGate(bus),
		Capabilities: caps,
		Registry:     prometheus.NewRegistry(),
	}, log)
	return &bridge{e: e, bus: bus, session: session, reach: reach, caps: caps}
}

func (b *bridge) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)
	return rec
}

func TestBridge_PublishListDismiss(t *testing.T) {
	b := newBridge(t)

	rec := b.do(http.MethodPost, "/v1/notifications", `{"kind":"info","title":"Payout","message":"Payout scheduled","timeout":2500}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.NotificationPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Timeout != 2500 || created.Kind != domain.KindInfo {
		t.Fatalf("unexpected payload %+v", created)
	}

	rec = b.do(http.MethodGet, "/v1/notifications", "")
	var list listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Notifications) != 1 || list.Notifications[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	if rec = b.do(http.MethodDelete, "/v1/notifications/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = b.do(http.MethodDelete, "/v1/notifications/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second dismissal: expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "notification not found") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

type listResponse struct {
	Notifications []domain.NotificationPayload `json:"notifications"`
}

func TestBridge_PublishValidation(t *testing.T) {
	b := newBridge(t)

	rec := b.do(http.MethodPost, "/v1/notifications", `{"kind":"shout","message":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(b.bus.List()) != 0 {
		t.Fatalf("invalid request must not reach the bus")
	}
	if !strings.Contains(rec.Body.String(), "kind") || !strings.Contains(rec.Body.String(), "message") {
		t.Fatalf("expected field messages, got %s", rec.Body.String())
	}
}

func TestBridge_CapabilitiesRequireSession(t *testing.T) {
	b := newBridge(t)

	rec := b.do(http.MethodGet, "/v1/capabilities", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when signed out, got %d", rec.Code)
	}
	if n := b.bus.List(); len(n) != 1 || n[0].Kind != domain.KindWarning {
		t.Fatalf("expected one denial warning, got %+v", n)
	}

	b.session.Set(domain.RoleOperator, domain.User{ID: "u-1", Role: "operator"})
	rec = b.do(http.MethodGet, "/v1/capabilities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Index(body, "view_fleet") > strings.Index(body, "edit_payouts") {
		t.Fatalf("capability order not preserved: %s", body)
	}
}

func TestBridge_CapabilitiesPlatformError(t *testing.T) {
	b := newBridge(t)
	b.session.Set(domain.RoleAdmin, domain.User{ID: "u-1"})
	b.caps.fetchFn = func(context.Context) (domain.CapabilityMap, error) {
		return domain.CapabilityMap{}, &domain.RemoteError{Status: 500, Message: "network down"}
	}

	rec := b.do(http.MethodGet, "/v1/capabilities", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "network down") {
		t.Fatalf("expected platform message, got %s", rec.Body.String())
	}

	b.caps.fetchFn = func(context.Context) (domain.CapabilityMap, error) {
		return domain.CapabilityMap{}, errors.New("boom")
	}
	if rec = b.do(http.MethodGet, "/v1/capabilities", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestBridge_Session(t *testing.T) {
	b := newBridge(t)

	rec := b.do(http.MethodGet, "/v1/session", "")
	if strings.TrimSpace(rec.Body.String()) != `{"authenticated":false}` {
		t.Fatalf("unexpected signed-out body %s", rec.Body.String())
	}

	b.session.Set(domain.RoleDriver, domain.User{ID: "u-9", Name: "Kim", Role: "driver"})
	rec = b.do(http.MethodGet, "/v1/session", "")
	if !strings.Contains(rec.Body.String(), `"role":"driver"`) || !strings.Contains(rec.Body.String(), `"authenticated":true`) {
		t.Fatalf("unexpected session body %s", rec.Body.String())
	}
}

func TestBridge_Readiness(t *testing.T) {
	b := newBridge(t)

	if rec := b.do(http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := b.do(http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200 while online, got %d", rec.Code)
	}

	b.reach.fn(false)
	rec := b.do(http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readiness: expected 503 while offline, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unreachable") {
		t.Fatalf("unexpected readiness body %s", rec.Body.String())
	}
}

func TestBridge_Metrics(t *testing.T) {
	b := newBridge(t)
	b.do(http.MethodGet, "/health", "")

	rec := b.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "requests_total") {
		t.Fatalf("expected bridge request metrics, got %s", rec.Body.String())
	}
}
