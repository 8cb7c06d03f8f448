package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
	"github.com/fleetpool/fleetdesk/internal/pkg/clock"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakePlatform is an echo server standing in for the remote platform. It
// issues HS256 tokens and checks the bearer header on protected routes.
type fakePlatform struct {
	secret   []byte
	tokenTTL time.Duration
	role     string
	caps     string

	lastLogin  loginRequest
	lastBearer string
	logouts    int
}

func newFakePlatform(t *testing.T) (*fakePlatform, *httptest.Server) {
	t.Helper()
	fp := &fakePlatform{
		secret:   []byte("test-secret"),
		tokenTTL: time.Hour,
		role:     "operator",
		caps:     `{"role":"operator","capabilities":{"view_fleet":true,"edit_payouts":false,"assign_drivers":true}}`,
	}

	e := echo.New()
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/auth/login", fp.login)
	e.POST("/auth/register", fp.register)
	e.GET("/auth/me", fp.me)
	e.POST("/auth/logout", fp.logout)
	e.GET("/capabilities", func(c echo.Context) error {
		if err := fp.checkBearer(c); err != nil {
			return err
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(fp.caps))
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return fp, srv
}

func (fp *fakePlatform) sign(subject string) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(epoch),
		ExpiresAt: jwt.NewNumericDate(epoch.Add(fp.tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(fp.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (fp *fakePlatform) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	fp.lastLogin = req
	if req.Password != "correct" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Wrong email or password"})
	}
	return c.JSON(http.StatusOK, authResponse{Token: fp.sign(req.Email)})
}

func (fp *fakePlatform) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if strings.HasSuffix(req.Email, "@taken.example") {
		return c.JSON(http.StatusConflict, map[string]string{"message": "Email already registered"})
	}
	return c.JSON(http.StatusCreated, authResponse{
		Token:  fp.sign(req.Email),
		Wallet: &domain.WalletCredential{Address: "0xFEED00112233", SecretKey: "wallet-secret"},
	})
}

func (fp *fakePlatform) me(c echo.Context) error {
	if err := fp.checkBearer(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.User{ID: "u-1", Name: "Ada", Email: "ada@fleet.example", Role: fp.role})
}

func (fp *fakePlatform) logout(c echo.Context) error {
	fp.logouts++
	return c.NoContent(http.StatusNoContent)
}

func (fp *fakePlatform) checkBearer(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	fp.lastBearer = header
	raw := strings.TrimPrefix(header, "Bearer ")
	_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return fp.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return epoch }),
	)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not signed in")
	}
	return nil
}

func newTestClient(t *testing.T, url string, clk clock.Clock) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: url, Clock: clk}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestClient_LoginThenCurrentUser(t *testing.T) {
	fp, srv := newFakePlatform(t)
	c := newTestClient(t, srv.URL, clock.Fake(epoch))

	err := c.Login(context.Background(), ports.LoginInput{
		Email: "ada@fleet.example", Password: "correct", RememberMe: true, Role: domain.RoleDriver,
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if fp.lastLogin.Role != "driver" || !fp.lastLogin.RememberMe {
		t.Fatalf("login request not forwarded: %+v", fp.lastLogin)
	}

	tok, ok := c.Token()
	if !ok || tok.Subject != "ada@fleet.example" || !tok.ExpiresAt.Equal(epoch.Add(time.Hour)) {
		t.Fatalf("unexpected token %+v", tok)
	}

	user, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if user.Role != "operator" || user.Email != "ada@fleet.example" {
		t.Fatalf("unexpected user %+v", user)
	}
	if !strings.HasPrefix(fp.lastBearer, "Bearer ") {
		t.Fatalf("expected bearer header, got %q", fp.lastBearer)
	}
}

func TestClient_LoginRejected(t *testing.T) {
	_, srv := newFakePlatform(t)
	c := newTestClient(t, srv.URL, clock.Fake(epoch))

	err := c.Login(context.Background(), ports.LoginInput{Email: "ada@fleet.example", Password: "nope"})
	var re *domain.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if re.Status != http.StatusUnauthorized || re.Message != "Wrong email or password" {
		t.Fatalf("unexpected remote error %+v", re)
	}
	if _, ok := c.Token(); ok {
		t.Fatalf("no token expected after a rejected login")
	}
}

func TestClient_RegisterUsesMessageField(t *testing.T) {
	_, srv := newFakePlatform(t)
	c := newTestClient(t, srv.URL, clock.Fake(epoch))

	err := c.Register(context.Background(), ports.RegisterInput{Name: "Bo", Email: "bo@taken.example", Password: "pw"})
	if got := domain.UserMessage(err, "fallback"); got != "Email already registered" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestClient_RegisterIssuesWalletOnce(t *testing.T) {
	_, srv := newFakePlatform(t)
	c := newTestClient(t, srv.URL, clock.Fake(epoch))

	if err := c.Register(context.Background(), ports.RegisterInput{Name: "Bo", Email: "bo@fleet.example", Password: "pw"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	w, ok := c.IssuedCredential()
	if !ok || w.Address != "0xFEED00112233" || w.SecretKey != "wallet-secret" {
		t.Fatalf("unexpected credential %+v, %v", w, ok)
	}
	if _, ok := c.IssuedCredential(); ok {
		t.Fatalf("credential should be handed over only once")
	}
}

func TestClient_ExpiredTokenFailsFast(t *testing.T) {
	fp, srv := newFakePlatform(t)
	clk := clock.Fake(epoch)
	c := newTestClient(t, srv.URL, clk)

	if err := c.Login(context.Background(), ports.LoginInput{Email: "a@b.example", Password: "correct"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	clk.Advance(2 * time.Hour)
	fp.lastBearer = "untouched"

	_, err := c.CurrentUser(context.Background())
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if fp.lastBearer != "untouched" {
		t.Fatalf("expired token should not reach the platform")
	}
	if _, ok := c.Token(); ok {
		t.Fatalf("expired token should be dropped")
	}
}

func TestClient_FetchCapabilitiesKeepsOrder(t *testing.T) {
	_, srv := newFakePlatform(t)
	c := newTestClient(t, srv.URL, clock.Fake(epoch))
	if err := c.Login(context.Background(), ports.LoginInput{Email: "a@b.example", Password: "correct"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	caps, err := c.FetchCapabilities(context.Background())
	if err != nil {
		t.Fatalf("FetchCapabilities returned error: %v", err)
	}
	want := []domain.Capability{
		{Name: "view_fleet", Allowed: true},
		{Name: "edit_payouts", Allowed: false},
		{Name: "assign_drivers", Allowed: true},
	}
	if caps.Role != "operator" || len(caps.Capabilities) != len(want) {
		t.Fatalf("unexpected capabilities %+v", caps)
	}
	for i := range want {
		if caps.Capabilities[i] != want[i] {
			t.Fatalf("capability %d: got %+v, want %+v", i, caps.Capabilities[i], want[i])
		}
	}
}

func TestClient_LogoutForgetsToken(t *testing.T) {
	fp, srv := newFakePlatform(t)
	c := newTestClient(t, srv.URL, clock.Fake(epoch))
	if err := c.Login(context.Background(), ports.LoginInput{Email: "a@b.example", Password: "correct"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if fp.logouts != 1 {
		t.Fatalf("expected one logout call, got %d", fp.logouts)
	}
	if _, ok := c.Token(); ok {
		t.Fatalf("token should be cleared after logout")
	}
}

func TestClient_UnreachablePlatform(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, clock.Fake(epoch))
	err := c.Ping(context.Background())
	if got := domain.UserMessage(err, ""); got != unreachableMessage {
		t.Fatalf("unexpected message %q (err %v)", got, err)
	}
}

func TestDecodeCapabilities_RejectsNonObject(t *testing.T) {
	if _, err := decodeCapabilities([]byte(`{"role":"admin","capabilities":[1,2]}`)); err == nil {
		t.Fatalf("expected an error for array capabilities")
	}
	if _, err := decodeCapabilities([]byte(`not json`)); err == nil {
		t.Fatalf("expected an error for invalid json")
	}
	caps, err := decodeCapabilities([]byte(`{"role":"admin"}`))
	if err != nil || len(caps.Capabilities) != 0 || caps.Role != "admin" {
		t.Fatalf("unexpected result %+v, %v", caps, err)
	}
}
