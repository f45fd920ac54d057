// Package systray implements the StatusNotifierItem/Watcher/Host
// protocol: watcher.go owns the registry of items and hosts and
// auto-elects watcher-vs-host mode on startup; host.go attaches to a
// remote watcher when this process lost the election; item.go builds
// the live per-item model and menu.go its Menu subtree; watcher.go also
// drives registration cleanup off NameOwnerChanged; format.go derives a
// display title from Title/ToolTip/IconName fallbacks.
package systray

import "github.com/pozitronik/wayle/pkg/reactive"

const (
	WatcherBusName   = "org.kde.StatusNotifierWatcher"
	WatcherPath      = "/StatusNotifierWatcher"
	ItemInterface    = "org.kde.StatusNotifierItem"
	WatcherInterface = "org.kde.StatusNotifierWatcher"
)

// Role is the mode this process settled into at startup.
type Role int

const (
	RoleWatcher Role = iota
	RoleHost
)

// MenuItem is one node of a StatusNotifierItem's Dbusmenu subtree.
type MenuItem struct {
	ID        int32
	Label     string
	Type      string // "standard" or "separator"
	Toggled   bool
	Shortcut  []string
	Enabled   bool
	Visible   bool
	Children  []MenuItem
}

// TrayItem is the live model of one remote StatusNotifierItem. Scalar
// fields are reactive so a consumer can subscribe to just, say,
// IconName without re-rendering on every Status change.
type TrayItem struct {
	BusName    string
	ObjectPath string

	Category    *reactive.Property[string]
	Title       *reactive.Property[string]
	Status      *reactive.Property[string]
	IconName    *reactive.Property[string]
	OverlayIcon *reactive.Property[string]
	AttentionIcon *reactive.Property[string]
	ToolTip     *reactive.Property[string]
	MenuPath    *reactive.Property[string]
	Menu        *reactive.Property[[]MenuItem]
}

// NewTrayItem constructs a TrayItem with zero-value reactive fields,
// ready to be synced from the remote object's initial property fetch.
func NewTrayItem(busName, objectPath string) *TrayItem {
	return &TrayItem{
		BusName:       busName,
		ObjectPath:    objectPath,
		Category:      reactive.New(""),
		Title:         reactive.New(""),
		Status:        reactive.New(""),
		IconName:      reactive.New(""),
		OverlayIcon:   reactive.New(""),
		AttentionIcon: reactive.New(""),
		ToolTip:       reactive.New(""),
		MenuPath:      reactive.New(""),
		Menu:          reactive.New[[]MenuItem](nil),
	}
}

// Key returns the registration key an item is tracked under: "bus/path"
// when the item registered with an explicit object path, else just
// "bus" (§4.5's "an item may register under bus/path or bus alone").
func (t *TrayItem) Key() string {
	if t.ObjectPath == "" {
		return t.BusName
	}
	return t.BusName + t.ObjectPath
}
