package domain

import (
	"errors"
	"testing"
)

func TestResolveRole_KnownRolesVerbatim(t *testing.T) {
	for _, raw := range []string{"operator", "driver", "admin"} {
		if got := ResolveRole(raw); got != Role(raw) {
			t.Fatalf("ResolveRole(%q) = %q, want %q", raw, got, raw)
		}
	}
}

func TestResolveRole_EverythingElseIsInvestor(t *testing.T) {
	for _, raw := range []string{"", "investor", "Admin", "OPERATOR", " driver", "superuser", "guest", "null"} {
		if got := ResolveRole(raw); got != RoleInvestor {
			t.Fatalf("ResolveRole(%q) = %q, want investor", raw, got)
		}
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Operator ")
	if err != nil {
		t.Fatalf("ParseRole returned error: %v", err)
	}
	if r != RoleOperator {
		t.Fatalf("expected operator, got %q", r)
	}

	if _, err := ParseRole("pilot"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestRole_In(t *testing.T) {
	if RoleNone.In(AllRoles...) {
		t.Fatalf("absent role must never be admitted")
	}
	if !RoleDriver.In(RoleDriver, RoleAdmin) {
		t.Fatalf("driver should be in [driver admin]")
	}
	if RoleInvestor.In(RoleDriver, RoleAdmin) {
		t.Fatalf("investor should not be in [driver admin]")
	}
	if RoleAdmin.In() {
		t.Fatalf("empty allow-list admits nobody")
	}
}

func TestUserMessage(t *testing.T) {
	err := &RemoteError{Status: 401, Message: "Wrong password"}
	if got := UserMessage(err, "Invalid credentials"); got != "Wrong password" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := UserMessage(&RemoteError{Status: 500}, "Invalid credentials"); got != "Invalid credentials" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := UserMessage(errors.New("boom"), "Unable to register"); got != "Unable to register" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
