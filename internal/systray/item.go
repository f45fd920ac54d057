package systray

import (
	"context"

	"github.com/godbus/dbus/v5"

	"github.com/pozitronik/wayle/internal/dbusutil"
)

// syncProperties performs a single bulk property fetch against item's
// remote StatusNotifierItem object, populating its reactive fields.
// Missing properties are left at their zero value rather than failing
// the whole sync, since not every implementation exposes every
// optional property (overlay/attention icons in particular).
func syncProperties(ctx context.Context, conn *dbusutil.Conn, item *TrayItem) error {
	obj := conn.Raw().Object(item.BusName, dbus.ObjectPath(item.ObjectPath))

	props, err := fetchAllProperties(ctx, obj)
	if err != nil {
		return err
	}

	if v, ok := props["Category"]; ok {
		if s, ok := v.(string); ok {
			item.Category.Set(s)
		}
	}
	if v, ok := props["Title"]; ok {
		if s, ok := v.(string); ok {
			item.Title.Set(s)
		}
	}
	if v, ok := props["Status"]; ok {
		if s, ok := v.(string); ok {
			item.Status.Set(s)
		}
	}
	if v, ok := props["IconName"]; ok {
		if s, ok := v.(string); ok {
			item.IconName.Set(s)
		}
	}
	if v, ok := props["OverlayIconName"]; ok {
		if s, ok := v.(string); ok {
			item.OverlayIcon.Set(s)
		}
	}
	if v, ok := props["AttentionIconName"]; ok {
		if s, ok := v.(string); ok {
			item.AttentionIcon.Set(s)
		}
	}
	if v, ok := props["ToolTip"]; ok {
		if s, ok := v.(string); ok {
			item.ToolTip.Set(s)
		}
	}
	if v, ok := props["Menu"]; ok {
		if p, ok := v.(dbus.ObjectPath); ok {
			item.MenuPath.Set(string(p))
		}
	}
	return nil
}

// fetchAllProperties calls org.freedesktop.DBus.Properties.GetAll
// against the item interface.
func fetchAllProperties(ctx context.Context, obj dbus.BusObject) (map[string]any, error) {
	call := dbusutil.CallWithTimeout(ctx, obj, "org.freedesktop.DBus.Properties.GetAll", ItemInterface)
	if call.Err != nil {
		return nil, call.Err
	}
	var raw map[string]dbus.Variant
	if err := call.Store(&raw); err != nil {
		return nil, err
	}
	plain := make(map[string]any, len(raw))
	for k, v := range raw {
		plain[k] = v.Value()
	}
	return plain, nil
}

// Activate forwards a primary activation (left click) to the remote
// item at (x, y) screen coordinates.
func Activate(ctx context.Context, conn *dbusutil.Conn, item *TrayItem, x, y int32) error {
	obj := conn.Raw().Object(item.BusName, dbus.ObjectPath(item.ObjectPath))
	return dbusutil.CallWithTimeout(ctx, obj, ItemInterface+".Activate", x, y).Err
}

// SecondaryActivate forwards a secondary activation (middle click).
func SecondaryActivate(ctx context.Context, conn *dbusutil.Conn, item *TrayItem, x, y int32) error {
	obj := conn.Raw().Object(item.BusName, dbus.ObjectPath(item.ObjectPath))
	return dbusutil.CallWithTimeout(ctx, obj, ItemInterface+".SecondaryActivate", x, y).Err
}

// ContextMenu forwards a context-menu request (right click).
func ContextMenu(ctx context.Context, conn *dbusutil.Conn, item *TrayItem, x, y int32) error {
	obj := conn.Raw().Object(item.BusName, dbus.ObjectPath(item.ObjectPath))
	return dbusutil.CallWithTimeout(ctx, obj, ItemInterface+".ContextMenu", x, y).Err
}

// Scroll forwards a scroll event; orientation is "vertical" or
// "horizontal" per the StatusNotifierItem spec.
func Scroll(ctx context.Context, conn *dbusutil.Conn, item *TrayItem, delta int32, orientation string) error {
	obj := conn.Raw().Object(item.BusName, dbus.ObjectPath(item.ObjectPath))
	return dbusutil.CallWithTimeout(ctx, obj, ItemInterface+".Scroll", delta, orientation).Err
}
