package dbusutil

import (
	"context"

	"github.com/godbus/dbus/v5"
)

// OwnerChange is a single NameOwnerChanged event for a name a caller
// asked to track.
type OwnerChange struct {
	Name     string
	OldOwner string
	NewOwner string
}

// WatchNameOwner subscribes to org.freedesktop.DBus.NameOwnerChanged
// for exactly name and reports each ownership change of it. No package
// in this module calls it at present: the systray watcher keeps its own
// NameOwnerChanged subscription, and the notification daemon does not
// track its name. The returned channel is closed when ctx is done.
func (c *Conn) WatchNameOwner(ctx context.Context, name string) (<-chan OwnerChange, error) {
	matchRule := []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, name),
	}
	if err := c.raw.AddMatchSignal(matchRule...); err != nil {
		return nil, err
	}

	signals := make(chan *dbus.Signal, 16)
	c.raw.Signal(signals)

	out := make(chan OwnerChange, 16)
	go func() {
		defer close(out)
		defer c.raw.RemoveSignal(signals)
		defer c.raw.RemoveMatchSignal(matchRule...)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if sig.Name != "org.freedesktop.DBus.NameOwnerChanged" || len(sig.Body) != 3 {
					continue
				}
				changedName, _ := sig.Body[0].(string)
				if changedName != name {
					continue
				}
				oldOwner, _ := sig.Body[1].(string)
				newOwner, _ := sig.Body[2].(string)
				change := OwnerChange{Name: changedName, OldOwner: oldOwner, NewOwner: newOwner}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// NameHasOwner reports whether name currently has an owner on the bus.
func (c *Conn) NameHasOwner(name string) (bool, error) {
	var has bool
	err := c.raw.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&has)
	return has, err
}
