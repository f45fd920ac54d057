// Package config implements wayle's layered TOML configuration system:
// import-following loader, deep merge, per-leaf ConfigProperty[T] with
// runtime/config/default layering, $NAME secret resolution, and an
// fsnotify-driven hot-reload watcher. It follows the teacher's
// internal/config load/validate/default control-flow shape, rebuilt
// around TOML instead of JSON.
package config

import (
	"os"
	"path/filepath"
)

// appDirName is the subdirectory wayle creates under each XDG base.
const appDirName = "wayle"

// Paths resolves the XDG base directories wayle reads and writes, with
// the standard environment-variable overrides and fallbacks.
type Paths struct {
	ConfigDir string // $XDG_CONFIG_HOME/wayle
	DataDir   string // $XDG_DATA_HOME/wayle
	CacheDir  string // $XDG_CACHE_HOME/wayle
	StateDir  string // $XDG_STATE_HOME/wayle
}

// ResolvePaths builds a Paths from the environment, following the
// fallbacks ~/.config, ~/.local/share, ~/.cache, ~/.local/state.
func ResolvePaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		ConfigDir: filepath.Join(xdgBase("XDG_CONFIG_HOME", filepath.Join(home, ".config")), appDirName),
		DataDir:   filepath.Join(xdgBase("XDG_DATA_HOME", filepath.Join(home, ".local", "share")), appDirName),
		CacheDir:  filepath.Join(xdgBase("XDG_CACHE_HOME", filepath.Join(home, ".cache")), appDirName),
		StateDir:  filepath.Join(xdgBase("XDG_STATE_HOME", filepath.Join(home, ".local", "state")), appDirName),
	}, nil
}

func xdgBase(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

// ConfigFile, RuntimeFile, ThemesDir and EnvFile are the well-known
// files/directories under ConfigDir.
func (p Paths) ConfigFile() string { return filepath.Join(p.ConfigDir, "config.toml") }
func (p Paths) RuntimeFile() string { return filepath.Join(p.ConfigDir, "runtime.toml") }
func (p Paths) ThemesDir() string   { return filepath.Join(p.ConfigDir, "themes") }
func (p Paths) EnvFile() string     { return filepath.Join(p.ConfigDir, ".env") }

// NotificationsDBPath is the notification store's location under
// DataDir.
func (p Paths) NotificationsDBPath() string {
	return filepath.Join(p.DataDir, "notifications.db")
}

// EnsureDirs creates ConfigDir, DataDir, CacheDir, StateDir and
// ThemesDir if they do not already exist.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.CacheDir, p.StateDir, p.ThemesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
