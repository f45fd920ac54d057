package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/pozitronik/wayle/internal/log"
)

// defaultConfigTOML is written out on first run, following the
// teacher's "create a default file if missing, then proceed as if it
// had always existed" loader shape.
const defaultConfigTOML = `# wayle configuration
[general]
log_format = "console"
log_level = "info"

[bar]
height = 32

[notification]
dnd = false
popup_duration = "5s"
remove_expired = true
`

// Loader owns the parsed Tree and the paths it was built from.
type Loader struct {
	Paths  Paths
	Tree   *Tree
	logger zerolog.Logger
}

// NewLoader resolves XDG paths and builds a Loader ready for Load.
func NewLoader() (*Loader, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}
	return &Loader{Paths: paths, Tree: NewTree(), logger: log.WithComponent("config")}, nil
}

// Load performs the full sequence: create config.toml if missing,
// import-follow + deep merge it, apply the result as the config layer,
// then parse and apply runtime.toml as the runtime layer.
func (l *Loader) Load() error {
	if err := l.Paths.EnsureDirs(); err != nil {
		return err
	}
	if err := l.ensureDefaultConfig(); err != nil {
		return err
	}
	if err := loadEnvFiles(l.Paths.ConfigDir); err != nil {
		l.logger.Warn().Err(err).Msg("failed to load .env files, secrets fall back to the process environment only")
	}

	configDoc, err := loadWithImports(l.Paths.ConfigFile())
	if err != nil {
		return fmt.Errorf("config: load config.toml: %w", err)
	}
	applyLayer(l.Tree, configDoc, layerConfig)

	runtimeDoc, err := loadWithImports(l.Paths.RuntimeFile())
	if err != nil {
		// runtime.toml is optional; a parse error here is a diagnostic,
		// not fatal — the config layer's values stay live.
		l.logger.Warn().Err(err).Msg("failed to parse runtime.toml, ignoring runtime layer")
		return nil
	}
	applyLayer(l.Tree, runtimeDoc, layerRuntime)
	return nil
}

func (l *Loader) ensureDefaultConfig() error {
	if _, err := os.Stat(l.Paths.ConfigFile()); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	l.logger.Info().Str("path", l.Paths.ConfigFile()).Msg("writing default config")
	return os.WriteFile(l.Paths.ConfigFile(), []byte(defaultConfigTOML), 0o644)
}

// ReloadFile re-parses just the file at path (config.toml or
// runtime.toml) and reapplies the matching layer, leaving the other
// layer untouched. Used by the hot-reload watcher.
func (l *Loader) ReloadFile(path string, layer layerKind) error {
	doc, err := loadWithImports(path)
	if err != nil {
		l.logger.Warn().Err(err).Str("path", path).Msg("failed to parse config file, keeping previous values")
		return err
	}
	applyLayer(l.Tree, doc, layer)
	return nil
}
