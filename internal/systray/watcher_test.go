package systray

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pozitronik/wayle/pkg/eventbus"
	"github.com/pozitronik/wayle/pkg/reactive"
)

func newTestWatcher() *Watcher {
	return &Watcher{
		RegisteredItems: reactive.New[[]string](nil),
		RegisteredHosts: reactive.New[[]string](nil),
		events:          eventbus.New[RegistryEvent](eventbus.DefaultCapacity),
	}
}

func TestWatcher_AddItemAppends(t *testing.T) {
	w := newTestWatcher()

	w.addItem(":1.5/StatusNotifierItem")
	w.addItem(":1.6")

	require.ElementsMatch(t, []string{":1.5/StatusNotifierItem", ":1.6"}, w.RegisteredItems.Get())
}

func TestWatcher_HandleNameLostRemovesMatchingItems(t *testing.T) {
	w := newTestWatcher()

	w.addItem(":1.5/StatusNotifierItem")
	w.addItem(":1.6")
	w.addHost(":1.7")

	w.handleNameLost(":1.5")

	require.Equal(t, []string{":1.6"}, w.RegisteredItems.Get())
	require.Equal(t, []string{":1.7"}, w.RegisteredHosts.Get())
}

func TestWatcher_HandleNameLostClearsLastHost(t *testing.T) {
	w := newTestWatcher()

	w.addHost(":1.7")
	w.handleNameLost(":1.7")

	require.Empty(t, w.RegisteredHosts.Get())
}
