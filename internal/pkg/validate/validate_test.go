package validate

import (
	"errors"
	"testing"
)

type signInForm struct {
	Email    string `validate:"required,email" label:"email address"`
	Password string `validate:"required"`
	Kind     string `validate:"omitempty,oneof=success info"`
}

func TestValidate_Passes(t *testing.T) {
	if err := New().Validate(signInForm{Email: "ana@fleet.io", Password: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsMessages(t *testing.T) {
	err := New().Validate(signInForm{Email: "not-an-email", Kind: "loud"})

	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	want := []string{
		"email address must be a valid email",
		"password is required",
		"kind must be one of: success info",
	}
	if len(ve.Messages) != len(want) {
		t.Fatalf("expected %d messages, got %v", len(want), ve.Messages)
	}
	for i := range want {
		if ve.Messages[i] != want[i] {
			t.Fatalf("message %d = %q, want %q", i, ve.Messages[i], want[i])
		}
	}
}
