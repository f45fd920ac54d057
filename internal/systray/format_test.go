package systray

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayTitle_PrefersTitle(t *testing.T) {
	item := NewTrayItem(":1.5", "/StatusNotifierItem")
	item.Title.Set("Network Manager")
	item.ToolTip.Set("ignored")
	require.Equal(t, "Network Manager", DisplayTitle(item))
}

func TestDisplayTitle_FallsBackToToolTipThenIconThenBusName(t *testing.T) {
	item := NewTrayItem(":1.5", "/StatusNotifierItem")
	require.Equal(t, ":1.5", DisplayTitle(item))

	item.IconName.Set("network-idle")
	require.Equal(t, "network-idle", DisplayTitle(item))

	item.ToolTip.Set("Wired connected")
	require.Equal(t, "Wired connected", DisplayTitle(item))
}

func TestTrayItem_KeyWithAndWithoutPath(t *testing.T) {
	withPath := NewTrayItem(":1.5", "/StatusNotifierItem")
	require.Equal(t, ":1.5/StatusNotifierItem", withPath.Key())

	withoutPath := NewTrayItem(":1.5", "")
	require.Equal(t, ":1.5", withoutPath.Key())
}

func TestSplitKey_RoundTripsWithKey(t *testing.T) {
	busName, path := splitKey(":1.5/StatusNotifierItem")
	require.Equal(t, ":1.5", busName)
	require.Equal(t, "/StatusNotifierItem", path)

	busName, path = splitKey(":1.5")
	require.Equal(t, ":1.5", busName)
	require.Empty(t, path)
}
