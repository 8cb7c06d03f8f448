// Package clipboard copies text to the user's clipboard through the terminal
// with OSC 52, which also works over SSH.
package clipboard

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/ports"
)

// OSC52 writes clipboard escape sequences to the controlling terminal.
type OSC52 struct {
	open   func() (io.WriteCloser, error)
	getenv func(string) string
	log    zerolog.Logger
}

var _ ports.Clipboard = (*OSC52)(nil)

// New returns a clipboard writing to /dev/tty, alongside the TUI renderer.
func New(log zerolog.Logger) *OSC52 {
	return &OSC52{
		open: func() (io.WriteCloser, error) {
			return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		},
		getenv: os.Getenv,
		log:    log.With().Str("component", "clipboard").Logger(),
	}
}

// NewWithWriter returns a clipboard writing to w. getenv is consulted for
// TMUX and TERM.
func NewWithWriter(w io.Writer, getenv func(string) string, log zerolog.Logger) *OSC52 {
	return &OSC52{
		open:   func() (io.WriteCloser, error) { return nopCloser{w}, nil },
		getenv: getenv,
		log:    log,
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Copy sends text to the terminal clipboard. The terminal gives no
// acknowledgement, so true means the sequence was written.
func (c *OSC52) Copy(ctx context.Context, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	w, err := c.open()
	if err != nil {
		return false, fmt.Errorf("clipboard: open terminal: %w", err)
	}
	defer w.Close()

	seq := osc52.New(text)
	// Under a multiplexer send both the passthrough form and the plain one;
	// which one arrives depends on the multiplexer's clipboard settings.
	switch {
	case c.inTmux():
		if _, err := seq.Tmux().WriteTo(w); err != nil {
			return false, fmt.Errorf("clipboard: write tmux sequence: %w", err)
		}
	case c.inScreen():
		if _, err := seq.Screen().WriteTo(w); err != nil {
			return false, fmt.Errorf("clipboard: write screen sequence: %w", err)
		}
	}
	if _, err := seq.WriteTo(w); err != nil {
		return false, fmt.Errorf("clipboard: write sequence: %w", err)
	}
	c.log.Debug().Int("bytes", len(text)).Msg("copied to clipboard")
	return true, nil
}

func (c *OSC52) inTmux() bool {
	return c.getenv("TMUX") != "" || strings.HasPrefix(c.getenv("TERM"), "tmux")
}

func (c *OSC52) inScreen() bool {
	return strings.HasPrefix(c.getenv("TERM"), "screen")
}
