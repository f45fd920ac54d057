package config

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/pozitronik/wayle/internal/log"
)

// WatchReload drives hot reload: it watches config.toml, runtime.toml,
// the themes directory and any .env/.*.env file in ConfigDir, and on
// each write/create event reparses the affected file and reapplies the
// matching layer. Every ConfigProperty whose effective value changed as
// a result republishes through its embedded reactive.Property — callers
// don't need to do anything beyond already watching those properties.
// The goroutine exits when ctx is done.
func (l *Loader) WatchReload(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(l.Paths.ConfigDir); err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(l.Paths.ThemesDir()); err != nil {
		// Themes directory may not exist on a bare-bones install; that's
		// not fatal to hot reload of the two main files.
		l.logger.Warn().Err(err).Msg("themes directory not watched")
	}

	logger := log.WithComponent("config.watcher")
	go l.runWatchLoop(ctx, watcher, logger)
	return nil
}

func (l *Loader) runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, logger zerolog.Logger) {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			l.handleEvent(event.Name, logger)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(watchErr).Msg("watcher error")
		}
	}
}

func (l *Loader) handleEvent(path string, logger zerolog.Logger) {
	base := filepath.Base(path)
	switch {
	case path == l.Paths.ConfigFile():
		if err := l.ReloadFile(path, layerConfig); err != nil {
			logger.Warn().Err(err).Msg("config.toml reload failed, previous values remain live")
			return
		}
		logger.Info().Msg("reloaded config.toml")
	case path == l.Paths.RuntimeFile():
		if err := l.ReloadFile(path, layerRuntime); err != nil {
			logger.Warn().Err(err).Msg("runtime.toml reload failed, previous values remain live")
			return
		}
		logger.Info().Msg("reloaded runtime.toml")
	case strings.HasPrefix(path, l.Paths.ThemesDir()):
		logger.Info().Str("file", base).Msg("theme file changed")
	case isEnvFile(base):
		if err := loadEnvFiles(l.Paths.ConfigDir); err != nil {
			logger.Warn().Err(err).Str("file", base).Msg("failed to reload env files")
			return
		}
		logger.Info().Str("file", base).Msg("reloaded env files, secrets re-resolve from the new values")
	}
}

// isEnvFile matches ".env" and ".NAME.env", the pattern named in §6.
func isEnvFile(base string) bool {
	if base == ".env" {
		return true
	}
	return strings.HasPrefix(base, ".") && strings.HasSuffix(base, ".env")
}
