// Package shell is the thin composition root: the only package that
// imports all three services (audio, notification, systray) plus
// config, and wires their lifetimes together under one root
// cancellation token.
package shell

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pozitronik/wayle/internal/audio"
	"github.com/pozitronik/wayle/internal/config"
	"github.com/pozitronik/wayle/internal/dbusutil"
	"github.com/pozitronik/wayle/internal/log"
	"github.com/pozitronik/wayle/internal/notification"
	"github.com/pozitronik/wayle/internal/systray"
	"github.com/pozitronik/wayle/pkg/reactive"
)

// Shell holds references to every running service; the UI layer (out
// of scope here) binds to their exported properties.
type Shell struct {
	Config     *config.Loader
	Audio      *audio.Service
	Monitor    *notification.Monitor
	Daemon     *notification.Daemon
	TrayRole   systray.Role
	TrayWatcher *systray.Watcher
	TrayHost    *systray.Host

	root *reactive.WatcherToken
}

// Start brings up the configuration system, then every service
// concurrently, wiring each service's background monitoring under a shared root
// token so a single shutdown stops all of them.
func Start(ctx context.Context) (*Shell, error) {
	root := reactive.NewWatcherToken(ctx)
	logger := log.WithComponent("shell")

	loader, err := config.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("shell: resolve config paths: %w", err)
	}
	if err := loader.Load(); err != nil {
		return nil, fmt.Errorf("shell: load config: %w", err)
	}
	log.Init(log.Config{
		Level:  log.Level(loader.Tree.General.LogLevel.Get()),
		Format: log.Format(loader.Tree.General.LogFormat.Get()),
	})
	if err := loader.WatchReload(root.Context()); err != nil {
		logger.Warn().Err(err).Msg("config hot reload disabled")
	}

	s := &Shell{Config: loader, root: root}

	// The three services have independent bring-up paths (a PulseAudio
	// socket, two separate D-Bus connections); bring them up
	// concurrently under one task group rather than paying their
	// connect latencies serially. A failure in one is logged and does
	// not prevent the others from starting, so g.Go's error returns are
	// always nil — the group exists for the concurrent-fan-out, not for
	// fail-fast semantics.
	g, gctx := errgroup.WithContext(root.Context())

	g.Go(func() error {
		audioSvc, err := audio.GetLive(root.Context(), root)
		if err != nil {
			logger.Warn().Err(err).Msg("audio service unavailable")
			return nil
		}
		s.Audio = audioSvc
		return nil
	})
	g.Go(func() error {
		if err := s.startNotifications(gctx); err != nil {
			logger.Warn().Err(err).Msg("notification daemon unavailable")
		}
		return nil
	})
	g.Go(func() error {
		if err := s.startTray(gctx); err != nil {
			logger.Warn().Err(err).Msg("systray service unavailable")
		}
		return nil
	})
	_ = g.Wait()

	return s, nil
}

func (s *Shell) startNotifications(ctx context.Context) error {
	paths := s.Config.Paths
	var store *notification.Store
	if st, err := notification.OpenStore(paths.NotificationsDBPath()); err != nil {
		log.WithComponent("notification").Warn().Err(err).Msg("persistence disabled")
	} else {
		store = st
	}

	maxID := uint32(0)
	if store != nil {
		if id, err := store.MaxID(); err == nil {
			maxID = id
		}
	}

	conn, err := dbusutil.Connect("notification")
	if err != nil {
		return err
	}

	monitor := notification.NewMonitor(store, s.Config.Tree.Notification)
	builder := notification.NewBuilder(notification.NewIDAllocator(maxID))
	daemon, err := notification.NewDaemon(conn, builder, monitor)
	if err != nil {
		return err
	}

	go monitor.Run(ctx)
	go daemon.RunSignals(ctx)
	go daemon.RunActionSignals(ctx)

	s.Monitor = monitor
	s.Daemon = daemon
	return nil
}

func (s *Shell) startTray(ctx context.Context) error {
	conn, err := dbusutil.Connect("systray")
	if err != nil {
		return err
	}

	role, watcher, err := systray.Bootstrap(ctx, conn)
	if err != nil {
		return err
	}
	s.TrayRole = role

	if role == systray.RoleWatcher {
		s.TrayWatcher = watcher
		return nil
	}

	host, err := systray.NewHost(ctx, conn)
	if err != nil {
		return err
	}
	s.TrayHost = host
	return nil
}

// Stop cancels the shared root token, tearing down every service's
// background monitoring.
func (s *Shell) Stop() {
	s.root.Cancel()
}
