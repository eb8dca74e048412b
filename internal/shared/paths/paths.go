// Package paths provides the standardized on-disk layout for user data so
// every service resolves the same directories.
package paths

import (
	"os"
	"path/filepath"
)

// Subdirectories under the data root.
const (
	LogsDir      = "logs"
	DatabasesDir = "databases"
	AppsDir      = "apps"
	ShellsDir    = "shells"
)

// Layout resolves paths under a single data root.
type Layout struct {
	Root string
}

// Default returns the layout rooted at the platform user-config directory.
func Default() (Layout, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Layout{}, err
	}
	return Layout{Root: filepath.Join(base, "termdesk")}, nil
}

// Logs returns the directory holding per-logger-process log files.
func (l Layout) Logs() string { return filepath.Join(l.Root, LogsDir) }

// Databases returns the directory holding one sqlite file per database name.
func (l Layout) Databases() string { return filepath.Join(l.Root, DatabasesDir) }

// Apps returns the user-installed app plugin directory.
func (l Layout) Apps() string { return filepath.Join(l.Root, AppsDir) }

// Shells returns the user-installed shell plugin directory.
func (l Layout) Shells() string { return filepath.Join(l.Root, ShellsDir) }

// Associations returns the file-association table path.
func (l Layout) Associations() string { return filepath.Join(l.Root, "associations.json") }

// ConfigFile returns the optional TOML config overlay path.
func (l Layout) ConfigFile() string { return filepath.Join(l.Root, "config.toml") }

// EnsureAll creates every directory in the layout.
func (l Layout) EnsureAll() error {
	for _, dir := range []string{l.Root, l.Logs(), l.Databases(), l.Apps(), l.Shells()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
