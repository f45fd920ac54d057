package systray

import (
	"context"

	"github.com/godbus/dbus/v5"

	"github.com/pozitronik/wayle/internal/dbusutil"
)

const dbusmenuInterface = "com.canonical.dbusmenu"

// dbusmenuLayout mirrors the (revision, (id, properties, children))
// tuple returned by GetLayout, decoded manually since dbus.Variant
// children are themselves nested (int32, map[string]dbus.Variant,
// []dbus.Variant) tuples.
type dbusmenuLayout struct {
	ID         int32
	Properties map[string]dbus.Variant
	Children   []dbus.Variant
}

// FetchMenu retrieves the full Dbusmenu subtree rooted at item's
// MenuPath and converts it into MenuItem values.
func FetchMenu(ctx context.Context, conn *dbusutil.Conn, item *TrayItem) ([]MenuItem, error) {
	menuPath := item.MenuPath.Get()
	if menuPath == "" {
		return nil, nil
	}
	obj := conn.Raw().Object(item.BusName, dbus.ObjectPath(menuPath))

	call := dbusutil.CallWithTimeout(ctx, obj, dbusmenuInterface+".GetLayout", int32(0), int32(-1), []string{})
	if call.Err != nil {
		return nil, call.Err
	}

	var revision uint32
	var root dbusmenuLayout
	if err := call.Store(&revision, &root); err != nil {
		return nil, err
	}
	return convertChildren(root.Children), nil
}

func convertChildren(children []dbus.Variant) []MenuItem {
	items := make([]MenuItem, 0, len(children))
	for _, child := range children {
		layout, ok := child.Value().(dbusmenuLayout)
		if !ok {
			// godbus hands a struct held in a variant back as []interface{}.
			fields, isTuple := child.Value().([]interface{})
			if !isTuple || len(fields) != 3 {
				continue
			}
			layout.ID, _ = fields[0].(int32)
			layout.Properties, _ = fields[1].(map[string]dbus.Variant)
			layout.Children, _ = fields[2].([]dbus.Variant)
		}
		items = append(items, convertLayout(layout))
	}
	return items
}

func convertLayout(layout dbusmenuLayout) MenuItem {
	item := MenuItem{ID: layout.ID, Enabled: true, Visible: true, Type: "standard"}
	if v, ok := layout.Properties["label"]; ok {
		if s, ok := v.Value().(string); ok {
			item.Label = s
		}
	}
	if v, ok := layout.Properties["type"]; ok {
		if s, ok := v.Value().(string); ok {
			item.Type = s
		}
	}
	if v, ok := layout.Properties["toggle-state"]; ok {
		if n, ok := v.Value().(int32); ok {
			item.Toggled = n == 1
		}
	}
	if v, ok := layout.Properties["enabled"]; ok {
		if b, ok := v.Value().(bool); ok {
			item.Enabled = b
		}
	}
	if v, ok := layout.Properties["visible"]; ok {
		if b, ok := v.Value().(bool); ok {
			item.Visible = b
		}
	}
	item.Children = convertChildren(layout.Children)
	return item
}
