package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
)

// SessionStore is the hosting application's session record. Dialogs never
// write to it directly; the host stores what their success callback hands
// over.
type SessionStore struct {
	auth ports.AuthClient
	log  zerolog.Logger

	mu      sync.RWMutex
	session domain.Session
}

// NewSessionStore returns a signed-out store.
func NewSessionStore(auth ports.AuthClient, log zerolog.Logger) *SessionStore {
	return &SessionStore{auth: auth, log: log}
}

// Set records a resolved session. It has the SuccessFunc signature so it
// can be passed straight to a dialog.
func (s *SessionStore) Set(role domain.Role, user domain.User) {
	s.mu.Lock()
	s.session = domain.Session{Role: role, User: user}
	s.mu.Unlock()
}

// Current returns the session and whether someone is signed in.
func (s *SessionStore) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.session.Authenticated()
}

// Role returns the current role, RoleNone when signed out.
func (s *SessionStore) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Role
}

// Logout clears the session locally and tells the platform. The local
// session is cleared even when the platform call fails.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	if err := s.auth.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("platform logout failed")
		return err
	}
	return nil
}
