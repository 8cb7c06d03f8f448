package ports

import (
	"context"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
)

// LoginInput carries the login form. Role is only a request hint; the
// authoritative role comes from CurrentUser.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	Role       domain.Role
}

// RegisterInput carries the registration form. Role is a request hint.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// AuthClient is the platform's authentication surface. Rejections carry a
// human-readable message as *domain.RemoteError.
type AuthClient interface {
	Login(ctx context.Context, in LoginInput) error
	Register(ctx context.Context, in RegisterInput) error
	CurrentUser(ctx context.Context) (domain.User, error)
	Logout(ctx context.Context) error
}

// CapabilityClient fetches the capability map of the signed-in user.
type CapabilityClient interface {
	FetchCapabilities(ctx context.Context) (domain.CapabilityMap, error)
}

// WalletIssuer hands over the wallet credential the platform issued during
// registration. The credential is returned once and then forgotten.
type WalletIssuer interface {
	IssuedCredential() (domain.WalletCredential, bool)
}
