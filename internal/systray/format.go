package systray

// DisplayTitle derives a deterministic display string for a tray item
// from its Title/ToolTip/IconName properties, falling back in that
// order, for the (out-of-scope) bar module that still needs *some*
// string to bind to even though this package doesn't render it.
func DisplayTitle(item *TrayItem) string {
	if title := item.Title.Get(); title != "" {
		return title
	}
	if tooltip := item.ToolTip.Get(); tooltip != "" {
		return tooltip
	}
	if icon := item.IconName.Get(); icon != "" {
		return icon
	}
	return item.BusName
}
