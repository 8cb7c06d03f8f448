package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrSubmitInFlight       = errors.New("submission already in progress")
	ErrUnauthenticated      = errors.New("not signed in")
	ErrSessionExpired       = errors.New("session expired")
	ErrUnknownRole          = errors.New("unknown role")
	ErrForbidden            = errors.New("access forbidden")
	ErrNotificationNotFound = errors.New("notification not found")
)

// RemoteError is a rejection from the platform service. Message is meant
// for the user and may be empty when the platform did not provide one.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform: status %d", e.Status)
	}
	return fmt.Sprintf("platform: %s (status %d)", e.Message, e.Status)
}

// UserMessage extracts the human-readable message carried by err, or
// returns fallback when there is none.
func UserMessage(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) {
		if re.Message != "" {
			return re.Message
		}
		return fallback
	}
	return fallback
}
