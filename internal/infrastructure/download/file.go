// Package download saves generated text files into the user's download
// directory.
package download

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/ports"
)

// Dir saves files into a directory. Files may hold secrets, so they are
// created owner-readable only.
type Dir struct {
	path string
	log  zerolog.Logger
}

var _ ports.FileSaver = (*Dir)(nil)

func NewDir(path string, log zerolog.Logger) *Dir {
	return &Dir{path: path, log: log.With().Str("component", "download").Logger()}
}

// Save writes content to filename inside the directory. Failures are logged
// and otherwise ignored.
func (d *Dir) Save(content, filename string) {
	if _, err := d.Write(content, filename); err != nil {
		d.log.Error().Err(err).Str("file", filename).Msg("download failed")
	}
}

// Write is Save with the resulting path and error exposed.
func (d *Dir) Write(content, filename string) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("download: invalid filename %q", filename)
	}
	if err := os.MkdirAll(d.path, 0o700); err != nil {
		return "", fmt.Errorf("download: create directory: %w", err)
	}
	dest := filepath.Join(d.path, name)
	if err := os.WriteFile(dest, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("download: write %s: %w", dest, err)
	}
	d.log.Info().Str("file", dest).Msg("file saved")
	return dest, nil
}
