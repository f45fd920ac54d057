package systray

import (
	"context"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	wlog "github.com/pozitronik/wayle/internal/log"
	"github.com/pozitronik/wayle/internal/dbusutil"
	"github.com/pozitronik/wayle/pkg/eventbus"
	"github.com/pozitronik/wayle/pkg/reactive"
	"github.com/pozitronik/wayle/pkg/service"
)

// RegistryEvent is one watcher-side registration change, mirrored onto
// the D-Bus signals StatusNotifierItemRegistered/Unregistered and
// StatusNotifierHost{Registered,Unregistered}.
type RegistryEvent struct {
	ItemRegistered   string
	ItemUnregistered string
	HostRegistered   bool
	HostUnregistered bool
}

// Watcher owns the registry of registered_items/registered_hosts. A
// process either owns this object (RoleWatcher) because it acquired
// WatcherBusName, or talks to the process that does (RoleHost). Per
// §4.5's design note, the watcher path also acts as a host internally:
// alongside the string-keyed registry it exported over D-Bus, it keeps
// its own live TrayItem per registered item so a single process never
// needs a second, redundant Host to get a usable item view.
type Watcher struct {
	conn *dbusutil.Conn
	ctx  context.Context
	mu   sync.Mutex

	RegisteredItems *reactive.Property[[]string]
	RegisteredHosts *reactive.Property[[]string]

	itemsMu sync.Mutex
	items   map[string]*TrayItem
	Items   *reactive.Property[[]*TrayItem]

	events *eventbus.Bus[RegistryEvent]
}

// NewWatcher constructs an empty registry.
func NewWatcher(conn *dbusutil.Conn) *Watcher {
	return &Watcher{
		conn:            conn,
		RegisteredItems: reactive.New[[]string](nil),
		RegisteredHosts: reactive.New[[]string](nil),
		items:           map[string]*TrayItem{},
		Items:           reactive.New[[]*TrayItem](nil),
		events:          eventbus.New[RegistryEvent](eventbus.DefaultCapacity),
	}
}

// Events exposes the registry's change stream for the D-Bus export
// layer to relay as signals.
func (w *Watcher) Events() (<-chan RegistryEvent, func()) {
	return w.events.Subscribe()
}

// Bootstrap attempts to acquire WatcherBusName. On success it exports
// the watcher interface and returns RoleWatcher; on denial it returns
// RoleHost so the caller can attach to the existing watcher instead.
func Bootstrap(ctx context.Context, conn *dbusutil.Conn) (Role, *Watcher, error) {
	acquired, err := conn.RequestName(WatcherBusName)
	if err != nil {
		return 0, nil, err
	}
	if !acquired {
		return RoleHost, nil, nil
	}

	w := NewWatcher(conn)
	if err := conn.Raw().Export(w, dbus.ObjectPath(WatcherPath), WatcherInterface); err != nil {
		return 0, nil, service.New("systray", service.KindBusTransport, "Export", err)
	}
	if err := conn.Raw().Export(introspect.Introspectable(watcherIntrospectXML),
		dbus.ObjectPath(WatcherPath), "org.freedesktop.DBus.Introspectable"); err != nil {
		return 0, nil, service.New("systray", service.KindBusTransport, "Export introspection", err)
	}

	w.ctx = ctx
	w.watchNameOwners(ctx)
	w.watchOwnRegistry(ctx)
	return RoleWatcher, w, nil
}

// watchOwnRegistry subscribes to the watcher's own registration events
// and maintains a live TrayItem per registered item, exactly as Host
// does for a remote watcher — the internal-host behaviour from §4.5.
func (w *Watcher) watchOwnRegistry(ctx context.Context) {
	events, stop := w.Events()
	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				switch {
				case ev.ItemRegistered != "":
					w.addInternalItem(ev.ItemRegistered)
				case ev.ItemUnregistered != "":
					w.removeInternalItem(ev.ItemUnregistered)
				}
			}
		}
	}()
}

func (w *Watcher) addInternalItem(key string) {
	busName, objectPath := splitKey(key)
	item := NewTrayItem(busName, objectPath)

	w.itemsMu.Lock()
	w.items[key] = item
	w.itemsMu.Unlock()
	w.republishItems()

	go func() {
		logger := wlog.WithComponent("systray.watcher")
		if err := syncProperties(w.ctx, w.conn, item); err != nil {
			logger.Warn().Err(err).Str("bus", item.BusName).Msg("failed to sync item properties")
			return
		}
		menu, err := FetchMenu(w.ctx, w.conn, item)
		if err != nil {
			logger.Warn().Err(err).Str("bus", item.BusName).Msg("failed to fetch item menu")
			return
		}
		item.Menu.Set(menu)
	}()
}

func (w *Watcher) removeInternalItem(key string) {
	w.itemsMu.Lock()
	delete(w.items, key)
	w.itemsMu.Unlock()
	w.republishItems()
}

func (w *Watcher) republishItems() {
	w.itemsMu.Lock()
	defer w.itemsMu.Unlock()
	items := make([]*TrayItem, 0, len(w.items))
	for _, item := range w.items {
		items = append(items, item)
	}
	w.Items.Set(items)
}

// RegisterStatusNotifierItem implements the watcher's item-registration
// method. serviceName, per the FDO convention, may already include an
// object path suffix; if not, the item's own bus name is used.
func (w *Watcher) RegisterStatusNotifierItem(serviceName string, sender dbus.Sender) *dbus.Error {
	key := serviceName
	if !strings.HasPrefix(key, ":") {
		key = string(sender) + serviceName
	}
	w.addItem(key)
	return nil
}

// RegisterStatusNotifierHost implements the watcher's host-registration
// method.
func (w *Watcher) RegisterStatusNotifierHost(service string) *dbus.Error {
	w.addHost(service)
	return nil
}

func (w *Watcher) addItem(key string) {
	w.mu.Lock()
	items := append(append([]string{}, w.RegisteredItems.Get()...), key)
	w.mu.Unlock()
	w.RegisteredItems.Set(items)
	w.events.Publish(RegistryEvent{ItemRegistered: key})
	w.emit(WatcherInterface+".StatusNotifierItemRegistered", key)
}

func (w *Watcher) addHost(name string) {
	w.mu.Lock()
	hosts := append(append([]string{}, w.RegisteredHosts.Get()...), name)
	w.mu.Unlock()
	w.RegisteredHosts.Set(hosts)
	w.events.Publish(RegistryEvent{HostRegistered: true})
	w.emit(WatcherInterface+".StatusNotifierHostRegistered")
}

// watchNameOwners subscribes to NameOwnerChanged on the bus daemon
// object itself (the FDO convention for a wildcard subscription: match
// on interface+member only, filter by prefix in-process) and drives the
// removal rules in §4.5.
func (w *Watcher) watchNameOwners(ctx context.Context) {
	logger := wlog.WithComponent("systray.watcher")
	go func() {
		var rule []dbus.MatchOption
		rule = []dbus.MatchOption{
			dbus.WithMatchInterface("org.freedesktop.DBus"),
			dbus.WithMatchMember("NameOwnerChanged"),
		}
		if err := w.conn.Raw().AddMatchSignal(rule...); err != nil {
			logger.Warn().Err(err).Msg("failed to subscribe to NameOwnerChanged")
			return
		}
		signals := make(chan *dbus.Signal, 32)
		w.conn.Raw().Signal(signals)
		defer w.conn.Raw().RemoveSignal(signals)

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
				name, _ := sig.Body[0].(string)
				newOwner, _ := sig.Body[2].(string)
				if newOwner != "" {
					continue
				}
				w.handleNameLost(name)
			}
		}
	}()
}

func (w *Watcher) handleNameLost(name string) {
	w.mu.Lock()
	var remainingItems, removedItems []string
	for _, key := range w.RegisteredItems.Get() {
		if strings.HasPrefix(key, name) {
			removedItems = append(removedItems, key)
		} else {
			remainingItems = append(remainingItems, key)
		}
	}

	var remainingHosts []string
	hostRemoved := false
	for _, host := range w.RegisteredHosts.Get() {
		if host == name {
			hostRemoved = true
			continue
		}
		remainingHosts = append(remainingHosts, host)
	}
	w.mu.Unlock()

	if len(removedItems) > 0 {
		w.RegisteredItems.Set(remainingItems)
		for _, key := range removedItems {
			w.events.Publish(RegistryEvent{ItemUnregistered: key})
			w.emit(WatcherInterface+".StatusNotifierItemUnregistered", key)
		}
	}
	if hostRemoved {
		w.RegisteredHosts.Set(remainingHosts)
		w.events.Publish(RegistryEvent{HostUnregistered: true})
		if len(remainingHosts) == 0 {
			w.emit(WatcherInterface + ".StatusNotifierHostUnregistered")
		}
	}
}

func (w *Watcher) emit(name string, args ...any) {
	if w.conn == nil {
		return
	}
	_ = w.conn.Raw().Emit(dbus.ObjectPath(WatcherPath), name, args...)
}

const watcherIntrospectXML = `
<node>
	<interface name="org.kde.StatusNotifierWatcher">
		<method name="RegisterStatusNotifierItem">
			<arg direction="in" type="s"/>
		</method>
		<method name="RegisterStatusNotifierHost">
			<arg direction="in" type="s"/>
		</method>
		<signal name="StatusNotifierItemRegistered"><arg type="s"/></signal>
		<signal name="StatusNotifierItemUnregistered"><arg type="s"/></signal>
		<signal name="StatusNotifierHostRegistered"></signal>
		<signal name="StatusNotifierHostUnregistered"></signal>
	</interface>
</node>`
