package systray

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/pozitronik/wayle/internal/dbusutil"
	wlog "github.com/pozitronik/wayle/internal/log"
	"github.com/pozitronik/wayle/pkg/reactive"
	"github.com/pozitronik/wayle/pkg/service"
)

// Host attaches to a remote StatusNotifierWatcher when this process
// lost (or never entered) the watcher election. It subscribes to
// StatusNotifierItemRegistered/Unregistered and maintains a live
// TrayItem per registered name.
type Host struct {
	conn *dbusutil.Conn
	ctx  context.Context

	mu    sync.Mutex
	items map[string]*TrayItem

	Items *reactive.Property[[]*TrayItem]
}

// NewHost registers this process as a host of the remote watcher at
// WatcherBusName/WatcherPath and returns a live Host. Fails with
// KindObjectNotFound if no watcher is present on the bus.
func NewHost(ctx context.Context, conn *dbusutil.Conn) (*Host, error) {
	has, err := conn.NameHasOwner(WatcherBusName)
	if err != nil {
		return nil, service.New("systray", service.KindBusTransport, "NameHasOwner", err)
	}
	if !has {
		return nil, service.New("systray", service.KindObjectNotFound, "NewHost", nil)
	}

	watcherObj := conn.Raw().Object(WatcherBusName, dbus.ObjectPath(WatcherPath))
	// A fresh id per host registration, not the process's own bus name,
	// so two wayle instances on the same user session never collide in
	// the watcher's registered_hosts bookkeeping.
	selfName := fmt.Sprintf("wayle-host-%s", uuid.NewString())
	if call := watcherObj.Call(WatcherInterface+".RegisterStatusNotifierHost", 0, selfName); call.Err != nil {
		return nil, service.New("systray", service.KindOperationFailed, "RegisterStatusNotifierHost", call.Err)
	}

	h := &Host{conn: conn, ctx: ctx, items: map[string]*TrayItem{}, Items: reactive.New[[]*TrayItem](nil)}
	h.subscribe(ctx, watcherObj)
	return h, nil
}

func (h *Host) subscribe(ctx context.Context, watcherObj dbus.BusObject) {
	logger := wlog.WithComponent("systray.host")
	rule := []dbus.MatchOption{
		dbus.WithMatchInterface(WatcherInterface),
	}
	if err := h.conn.Raw().AddMatchSignal(rule...); err != nil {
		logger.Warn().Err(err).Msg("failed to subscribe to watcher signals")
		return
	}
	signals := make(chan *dbus.Signal, 32)
	h.conn.Raw().Signal(signals)

	go func() {
		defer h.conn.Raw().RemoveSignal(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				h.handleSignal(sig)
			}
		}
	}()
}

func (h *Host) handleSignal(sig *dbus.Signal) {
	switch sig.Name {
	case WatcherInterface + ".StatusNotifierItemRegistered":
		if len(sig.Body) != 1 {
			return
		}
		key, _ := sig.Body[0].(string)
		h.addItem(key)
	case WatcherInterface + ".StatusNotifierItemUnregistered":
		if len(sig.Body) != 1 {
			return
		}
		key, _ := sig.Body[0].(string)
		h.removeItem(key)
	}
}

// addItem constructs a fresh TrayItem for key, replacing any prior
// instance registered under the same name (a re-registration rebinds
// the proxy rather than reusing the old one, per §4.5's state machine),
// then syncs its properties and menu so Title/Status/IconName/Menu
// carry real values rather than staying at zero.
func (h *Host) addItem(key string) {
	busName, objectPath := splitKey(key)
	item := NewTrayItem(busName, objectPath)

	h.mu.Lock()
	h.items[key] = item
	h.mu.Unlock()
	h.republish()

	go h.syncItem(item)
}

// syncItem performs the initial bulk property fetch and menu fetch for
// a newly registered item. Both calls hit the remote item's own bus
// connection, so they run off the signal-handling goroutine to avoid
// stalling delivery of further registration signals.
func (h *Host) syncItem(item *TrayItem) {
	logger := wlog.WithComponent("systray.host")
	if err := syncProperties(h.ctx, h.conn, item); err != nil {
		logger.Warn().Err(err).Str("bus", item.BusName).Msg("failed to sync item properties")
		return
	}
	menu, err := FetchMenu(h.ctx, h.conn, item)
	if err != nil {
		logger.Warn().Err(err).Str("bus", item.BusName).Msg("failed to fetch item menu")
		return
	}
	item.Menu.Set(menu)
}

func (h *Host) removeItem(key string) {
	h.mu.Lock()
	delete(h.items, key)
	h.mu.Unlock()
	h.republish()
}

func (h *Host) republish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	items := make([]*TrayItem, 0, len(h.items))
	for _, item := range h.items {
		items = append(items, item)
	}
	h.Items.Set(items)
}

// splitKey reverses TrayItem.Key(): a registration key is either just a
// bus name (":1.23") or a bus name immediately followed by an absolute
// object path ("/org/...").
func splitKey(key string) (busName, objectPath string) {
	idx := strings.Index(key, "/")
	if idx < 0 {
		return key, ""
	}
	return key[:idx], key[idx:]
}
