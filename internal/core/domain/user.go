package domain

// User is the record returned by the platform's "current user" lookup. The
// client only reads it; Role is the raw string and may be empty.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Session is the hosting application's record of who is signed in.
// The zero value is a signed-out session.
type Session struct {
	Role Role `json:"role"`
	User User `json:"user"`
}

// Authenticated reports whether a role has been resolved.
func (s Session) Authenticated() bool {
	return s.Role != RoleNone
}

// WalletCredential is a blockchain wallet credential issued by the platform
// during onboarding. SecretKey must never be logged.
type WalletCredential struct {
	Address   string `json:"address"`
	SecretKey string `json:"secret_key"`
}
