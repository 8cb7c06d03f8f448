package platform

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
)

// Token is the bearer token the platform issued for the current session.
// The client never verifies its signature; the platform does. Only the
// expiry is read so an expired session fails without a round trip.
type Token struct {
	Raw       string
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token has an expiry at or before now.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// ParseToken reads the registered claims of raw without verifying it.
func ParseToken(raw string) (*Token, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("platform: parse token: %w", err)
	}
	tok := &Token{Raw: raw, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		tok.ExpiresAt = claims.ExpiresAt.Time
	}
	return tok, nil
}

// storeToken keeps the token from an auth response. An empty token means the
// platform relies on the session cookie alone.
func (c *Client) storeToken(raw string) error {
	if raw == "" {
		c.clearToken()
		return nil
	}
	tok, err := ParseToken(raw)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	return nil
}

func (c *Client) clearToken() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

// Token returns the current token, if any.
func (c *Client) Token() (*Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return nil, false
	}
	tok := *c.token
	return &tok, true
}

// authorize attaches the bearer token to req. An expired token is dropped
// and the request fails with ErrSessionExpired.
func (c *Client) authorize(req *http.Request) error {
	c.mu.RLock()
	tok := c.token
	c.mu.RUnlock()
	if tok == nil {
		return nil
	}
	if tok.Expired(c.clock.Now()) {
		c.clearToken()
		return domain.ErrSessionExpired
	}
	req.Header.Set("Authorization", "Bearer "+tok.Raw)
	return nil
}
