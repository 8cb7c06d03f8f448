package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
)

// SecretKeyModal discloses a wallet credential once and lets the user copy
// or save it. It only displays what the platform produced; the key is
// never logged.
type SecretKeyModal struct {
	credential domain.WalletCredential
	clipboard  ports.Clipboard
	files      ports.FileSaver
	bus        ports.Notifier
	log        zerolog.Logger

	mu   sync.Mutex
	open bool
}

// NewSecretKeyModal returns an open modal for credential.
func NewSecretKeyModal(credential domain.WalletCredential, clipboard ports.Clipboard, files ports.FileSaver, bus ports.Notifier, log zerolog.Logger) *SecretKeyModal {
	return &SecretKeyModal{
		credential: credential,
		clipboard:  clipboard,
		files:      files,
		bus:        bus,
		log:        log.With().Str("wallet", credential.Address).Logger(),
		open:       true,
	}
}

// Credential returns the credential being shown.
func (m *SecretKeyModal) Credential() domain.WalletCredential {
	return m.credential
}

// Copy places the secret key on the clipboard and reports the result.
func (m *SecretKeyModal) Copy(ctx context.Context) bool {
	ok, err := m.clipboard.Copy(ctx, m.credential.SecretKey)
	if err != nil || !ok {
		m.log.Warn().Err(err).Msg("secret key copy failed")
		m.bus.Publish(Danger("Copy failed", "Could not reach the clipboard. Download the key instead."))
		return false
	}
	m.bus.Publish(Success("Secret key copied", "Store it somewhere safe; it will not be shown again."))
	return true
}

// Download offers the credential as a text file. The saver is best effort.
func (m *SecretKeyModal) Download() string {
	name := m.Filename()
	m.files.Save(m.fileContent(), name)
	m.bus.Publish(Info("Secret key saved", "Saved as "+name+"."))
	return name
}

// Filename is the name used by Download.
func (m *SecretKeyModal) Filename() string {
	addr := strings.TrimPrefix(m.credential.Address, "0x")
	if len(addr) > 8 {
		addr = addr[:8]
	}
	if addr == "" {
		return "fleet-wallet-secret.txt"
	}
	return fmt.Sprintf("fleet-wallet-%s-secret.txt", strings.ToLower(addr))
}

func (m *SecretKeyModal) fileContent() string {
	return fmt.Sprintf("Wallet address: %s\nSecret key: %s\n", m.credential.Address, m.credential.SecretKey)
}

// Acknowledge closes the modal after the user confirms they stored the key.
func (m *SecretKeyModal) Acknowledge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
}

// IsOpen reports whether the modal is shown.
func (m *SecretKeyModal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
