// Package dbusutil holds the D-Bus plumbing shared by the notification
// daemon and the systray watcher/host: session/system bus connections,
// a NameOwnerChanged subscription helper, and a call-timeout wrapper.
// Every service that talks to D-Bus goes through here rather than
// dialing godbus directly, the way the teacher funnels every HID
// transaction through internal/driver.Client instead of syscalling from
// widget code.
package dbusutil

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	wlog "github.com/pozitronik/wayle/internal/log"
	"github.com/pozitronik/wayle/pkg/service"
)

// DefaultCallTimeout bounds property-get style method calls that don't
// already carry a deadline.
const DefaultCallTimeout = 5 * time.Second

// Conn wraps a *dbus.Conn with the timeout and error-taxonomy
// conventions wayle's services share.
type Conn struct {
	raw     *dbus.Conn
	service string
	log     zerolog.Logger
}

// Connect opens a session-bus connection for serviceName (used in error
// messages and logging), following the one-shared-connection-per-service
// rule: each service owns exactly one *Conn for its lifetime.
func Connect(serviceName string) (*Conn, error) {
	raw, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, service.New(serviceName, service.KindBusTransport, "ConnectSessionBus", err)
	}
	return &Conn{raw: raw, service: serviceName, log: wlog.WithComponent(serviceName)}, nil
}

// ConnectSystem opens a system-bus connection, for proxies that live on
// it (UPower, bluez, NetworkManager).
func ConnectSystem(serviceName string) (*Conn, error) {
	raw, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, service.New(serviceName, service.KindBusTransport, "ConnectSystemBus", err)
	}
	return &Conn{raw: raw, service: serviceName, log: wlog.WithComponent(serviceName)}, nil
}

// Raw returns the underlying *dbus.Conn for calls this package doesn't
// wrap directly.
func (c *Conn) Raw() *dbus.Conn { return c.raw }

// Close closes the underlying connection.
func (c *Conn) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// RequestName requests ownership of name, returning whether it was
// acquired (vs. already owned by someone else) and any transport error.
func (c *Conn) RequestName(name string) (acquired bool, err error) {
	reply, err := c.raw.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return false, service.New(c.service, service.KindBusTransport, "RequestName", err)
	}
	c.log.Debug().Str("name", name).Bool("acquired", reply == dbus.RequestNameReplyPrimaryOwner).Msg("requested bus name")
	return reply == dbus.RequestNameReplyPrimaryOwner, nil
}

// CallWithTimeout invokes method on obj with args, bounded by
// DefaultCallTimeout unless ctx already carries a tighter deadline.
func CallWithTimeout(ctx context.Context, obj dbus.BusObject, method string, args ...interface{}) *dbus.Call {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCallTimeout)
		defer cancel()
	}
	ch := make(chan *dbus.Call, 1)
	obj.GoWithContext(ctx, method, 0, ch, args...)
	select {
	case call := <-ch:
		return call
	case <-ctx.Done():
		return &dbus.Call{Err: ctx.Err()}
	}
}
