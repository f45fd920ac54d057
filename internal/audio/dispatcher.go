package audio

import (
	"context"
	"runtime"
	"time"

	"github.com/jfreymuth/pulse/proto"

	wlog "github.com/pozitronik/wayle/internal/log"
	"github.com/pozitronik/wayle/pkg/service"
)

// refreshCommand is generated from PulseAudio subscription callbacks
// (the internal channel); it always wins priority over user commands so
// property state stays fresh before a user mutation is applied against
// it.
type refreshCommand struct {
	kind     refreshKind
	index    uint32
	facility Facility
}

type refreshKind int

const (
	refreshDevice refreshKind = iota
	refreshStream
	refreshServerInfo
	removeEntity
)

// userCommand is a user-intent mutation (the external channel): set
// volume/mute, switch default, move a stream, set a port.
type userCommand struct {
	apply func(*proto.Client) error
	done  chan error
}

// dispatcher owns the PulseAudio client and both command queues on a
// dedicated goroutine pinned to its own OS thread (via
// runtime.LockOSThread in run), mirroring the teacher's device notifier
// thread that owns a native COM object and drains callback-derived
// work alongside user-issued commands.
type dispatcher struct {
	client *proto.Client

	refresh chan refreshCommand
	command chan userCommand

	// disconnected is signalled (non-blocking) whenever the current
	// PulseAudio connection is found dead, waking the service's
	// reconnect loop.
	disconnected chan struct{}

	limiter *rateLimiter
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		refresh:      make(chan refreshCommand, 256),
		command:      make(chan userCommand, 64),
		disconnected: make(chan struct{}, 1),
		limiter:      newRateLimiter(),
	}
}

// notifyDisconnected wakes the reconnect loop without blocking if it's
// already been notified and hasn't consumed the signal yet.
func (d *dispatcher) notifyDisconnected() {
	select {
	case d.disconnected <- struct{}{}:
	default:
	}
}

// submitRefresh enqueues an internally generated refresh, never
// blocking the subscription callback that produced it.
func (d *dispatcher) submitRefresh(cmd refreshCommand) {
	select {
	case d.refresh <- cmd:
	default:
		// Subscription callbacks fire faster than a full refresh drains
		// in pathological cases; dropping a redundant refresh is safe
		// since the next one re-reads current state anyway.
	}
}

// submitCommand enqueues a user command and waits for it to either run
// or be rejected by the rate limiter, bounded by ctx.
func (d *dispatcher) submitCommand(ctx context.Context, isVolumeChange bool, apply func(*proto.Client) error) error {
	if isVolumeChange && !d.limiter.shouldProcess(time.Now()) {
		return nil
	}
	cmd := userCommand{apply: apply, done: make(chan error, 1)}
	select {
	case d.command <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run pumps the mainloop: internal refresh commands drain first (keeps
// property state fresh), then external user commands (applied against
// that fresh state), each iteration. It returns when ctx is cancelled.
func (d *dispatcher) run(ctx context.Context, svc *Service) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	logger := wlog.WithComponent("audio")
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-d.refresh:
			svc.applyRefresh(cmd)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return
		case cmd := <-d.refresh:
			svc.applyRefresh(cmd)
		case cmd := <-d.command:
			err := cmd.apply(d.client)
			if err != nil {
				logger.Warn().Err(err).Msg("pulseaudio command failed")
				err = service.New("audio", service.KindOperationFailed, "command", err)
			}
			cmd.done <- err
		}
	}
}
