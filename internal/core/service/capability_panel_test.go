package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
)

type stubCapabilityClient struct {
	fetchFn func(ctx context.Context) (domain.CapabilityMap, error)
	calls   int
}

func (s *stubCapabilityClient) FetchCapabilities(ctx context.Context) (domain.CapabilityMap, error) {
	s.calls++
	return s.fetchFn(ctx)
}

func TestCapabilityPanel_LoadingBeforeMount(t *testing.T) {
	client := &stubCapabilityClient{}
	panel := NewCapabilityPanel(client, domain.RoleOperator, zerolog.Nop())

	v := panel.View()
	if v.State != PanelLoading || v.Role != domain.RoleOperator {
		t.Fatalf("unexpected initial view: %+v", v)
	}
	if client.calls != 0 {
		t.Fatalf("no fetch expected before mount")
	}
}

func TestCapabilityPanel_LoadedKeepsOrder(t *testing.T) {
	client := &stubCapabilityClient{
		fetchFn: func(context.Context) (domain.CapabilityMap, error) {
			return domain.CapabilityMap{
				Role: "operator",
				Capabilities: []domain.Capability{
					{Name: "vehicles.assign", Allowed: true},
					{Name: "revenue.withdraw", Allowed: false},
					{Name: "drivers.invite", Allowed: true},
				},
			}, nil
		},
	}
	panel := NewCapabilityPanel(client, domain.RoleOperator, zerolog.Nop())

	v := panel.Mount(context.Background())
	if v.State != PanelLoaded {
		t.Fatalf("expected loaded, got %+v", v)
	}
	want := []string{"vehicles.assign", "revenue.withdraw", "drivers.invite"}
	for i, row := range v.Rows {
		if row.Name != want[i] {
			t.Fatalf("row %d = %q, want %q", i, row.Name, want[i])
		}
	}
	if v.Rows[1].Allowed {
		t.Fatalf("revenue.withdraw should be denied")
	}
}

func TestCapabilityPanel_ErrorShowsMessageOnly(t *testing.T) {
	client := &stubCapabilityClient{
		fetchFn: func(context.Context) (domain.CapabilityMap, error) {
			return domain.CapabilityMap{}, errors.New("network down")
		},
	}
	panel := NewCapabilityPanel(client, domain.RoleDriver, zerolog.Nop())

	v := panel.Mount(context.Background())
	if v.State != PanelError || v.Message != "network down" {
		t.Fatalf("unexpected error view: %+v", v)
	}
	if len(v.Rows) != 0 {
		t.Fatalf("error view must not carry capability rows")
	}
}

func TestCapabilityPanel_FetchesOncePerMount(t *testing.T) {
	client := &stubCapabilityClient{
		fetchFn: func(context.Context) (domain.CapabilityMap, error) {
			return domain.CapabilityMap{}, &domain.RemoteError{Status: 502, Message: "upstream unavailable"}
		},
	}
	panel := NewCapabilityPanel(client, domain.RoleAdmin, zerolog.Nop())

	panel.Mount(context.Background())
	v := panel.Mount(context.Background())
	if client.calls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", client.calls)
	}
	if v.Message != "upstream unavailable" {
		t.Fatalf("unexpected message %q", v.Message)
	}

	// A remount is a new panel and fetches again.
	NewCapabilityPanel(client, domain.RoleAdmin, zerolog.Nop()).Mount(context.Background())
	if client.calls != 2 {
		t.Fatalf("expected remount to fetch, got %d calls", client.calls)
	}
}
