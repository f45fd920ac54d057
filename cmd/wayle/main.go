// Command wayle runs the reactive service layer standalone: audio,
// notification daemon, and systray watcher/host, composed by
// internal/shell and bound to the layered TOML config system.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pozitronik/wayle/internal/log"
	"github.com/pozitronik/wayle/internal/shell"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.WithComponent("main")

	s, err := shell.Start(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start wayle")
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	s.Stop()
}
