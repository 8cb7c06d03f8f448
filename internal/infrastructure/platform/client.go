// Package platform is the HTTP client for the remote fleet platform: the
// authentication, "current user" and capability endpoints the UI calls.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
	"github.com/fleetpool/fleetdesk/internal/pkg/clock"
)

const (
	pathLogin        = "/auth/login"
	pathRegister     = "/auth/register"
	pathLogout       = "/auth/logout"
	pathCurrentUser  = "/auth/me"
	pathCapabilities = "/capabilities"
	pathHealth       = "/health"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// unreachableMessage is shown when the platform could not be contacted.
const unreachableMessage = "Unable to reach the fleet platform"

// Client talks JSON to the platform. The session is carried both by the
// cookie jar and by the bearer token returned from login or registration.
type Client struct {
	baseURL string
	http    *http.Client
	clock   clock.Clock
	log     zerolog.Logger

	mu     sync.RWMutex
	token  *Token
	wallet *domain.WalletCredential
}

var (
	_ ports.AuthClient       = (*Client)(nil)
	_ ports.CapabilityClient = (*Client)(nil)
	_ ports.WalletIssuer     = (*Client)(nil)
)

// Config captures the settings for a platform client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Clock   clock.Clock
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// NewClient builds a Client. A default timeout and the real clock are used
// when none are provided.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("platform: cookie jar: %w", err)
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("platform: base url is required")
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout, Jar: jar, Transport: cfg.Transport},
		clock:   clk,
		log:     log.With().Str("component", "platform").Logger(),
	}, nil
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
	Role       string `json:"role,omitempty"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type authResponse struct {
	Token  string                   `json:"token,omitempty"`
	Wallet *domain.WalletCredential `json:"wallet,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Login submits credentials. The requested role is a hint only.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, pathLogin, loginRequest{
		Email:      in.Email,
		Password:   in.Password,
		RememberMe: in.RememberMe,
		Role:       string(in.Role),
	}, &resp, false)
	if err != nil {
		return err
	}
	return c.storeToken(resp.Token)
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, pathRegister, registerRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     string(in.Role),
	}, &resp, false)
	if err != nil {
		return err
	}
	if resp.Wallet != nil && resp.Wallet.SecretKey != "" {
		c.mu.Lock()
		c.wallet = resp.Wallet
		c.mu.Unlock()
	}
	return c.storeToken(resp.Token)
}

// IssuedCredential returns the wallet credential from the last registration,
// once.
func (c *Client) IssuedCredential() (domain.WalletCredential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wallet == nil {
		return domain.WalletCredential{}, false
	}
	w := *c.wallet
	c.wallet = nil
	return w, true
}

// CurrentUser returns the authoritative record of the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, pathCurrentUser, nil, &user, true); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Logout ends the platform session and forgets the local token.
func (c *Client) Logout(ctx context.Context) error {
	defer c.clearToken()
	return c.do(ctx, http.MethodPost, pathLogout, nil, nil, true)
}

// FetchCapabilities returns the capability map for the signed-in user.
func (c *Client) FetchCapabilities(ctx context.Context) (domain.CapabilityMap, error) {
	body, err := c.raw(ctx, http.MethodGet, pathCapabilities, nil, true)
	if err != nil {
		return domain.CapabilityMap{}, err
	}
	return decodeCapabilities(body)
}

// Ping checks that the platform answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.raw(ctx, http.MethodGet, pathHealth, nil, false)
	return err
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	body, err := c.raw(ctx, method, path, in, authed)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("platform: decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, method, path string, in any, authed bool) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("platform: encode %s request: %w", path, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("platform: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if err := c.authorize(req); err != nil {
			return nil, err
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("platform request failed")
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform: %s %s: %w", method, path, ctx.Err())
		}
		return nil, &domain.RemoteError{Message: unreachableMessage}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("platform: read %s response: %w", path, err)
	}

	c.log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).Msg("platform request")

	if res.StatusCode >= http.StatusBadRequest {
		if res.StatusCode == http.StatusUnauthorized && authed {
			c.clearToken()
		}
		return nil, remoteError(res.StatusCode, body)
	}
	return body, nil
}

// remoteError turns an error response into a RemoteError carrying the
// platform's message, if it sent one.
func remoteError(status int, body []byte) error {
	var env errorResponse
	if err := json.Unmarshal(body, &env); err == nil {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return &domain.RemoteError{Status: status, Message: msg}
	}
	return &domain.RemoteError{Status: status}
}
