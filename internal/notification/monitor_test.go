package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pozitronik/wayle/internal/config"
)

func testConfig() config.NotificationConfig {
	return config.NotificationConfig{
		DoNotDisturb:  config.NewProperty(false),
		PopupDuration: config.NewProperty(5 * time.Second),
		RemoveExpired: config.NewProperty(true),
	}
}

func TestMonitor_AddInsertsIntoListAndPopups(t *testing.T) {
	m := NewMonitor(nil, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	ch, stop := m.Notifications.Watch()
	defer stop()

	m.SubmitAdd(Notification{ID: 1, AppName: "a", Summary: "hi", Timestamp: time.Now()})

	require.Len(t, <-ch, 1)
	require.Eventually(t, func() bool {
		return len(m.Popups.Get()) == 1
	}, time.Second, time.Millisecond)
}

func TestMonitor_TransientSkipsListButPopups(t *testing.T) {
	m := NewMonitor(nil, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.SubmitAdd(Notification{ID: 1, AppName: "a", Summary: "hi", Transient: true, Timestamp: time.Now()})

	require.Eventually(t, func() bool {
		return len(m.Popups.Get()) == 1
	}, time.Second, time.Millisecond)
	require.Empty(t, m.Notifications.Get())
}

func TestMonitor_RemoveEmitsClosedSignal(t *testing.T) {
	m := NewMonitor(nil, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	closed, stop := m.ClosedEvents()
	defer stop()

	m.SubmitAdd(Notification{ID: 1, AppName: "a", Summary: "hi", Timestamp: time.Now()})
	require.Eventually(t, func() bool { return len(m.Notifications.Get()) == 1 }, time.Second, time.Millisecond)

	m.SubmitRemove(1, ReasonClosedByUser)

	select {
	case ev := <-closed:
		require.Equal(t, uint32(1), ev.ID)
		require.Equal(t, ReasonClosedByUser, ev.Reason)
	case <-time.After(time.Second):
		t.Fatal("expected NotificationClosed event")
	}
	require.Empty(t, m.Notifications.Get())
}

// TestMonitor_DoNotDisturbSkipsPopups exercises the scenario from §8:
// an external app sends a Notify carrying no DND hint at all, and the
// shell's own global do-not-disturb property still suppresses the
// popup, because handleAdd consults config, not the request.
func TestMonitor_DoNotDisturbSkipsPopups(t *testing.T) {
	cfg := testConfig()
	cfg.DoNotDisturb.Set(true)
	m := NewMonitor(nil, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	ch, stop := m.Notifications.Watch()
	defer stop()

	m.SubmitAdd(Notification{ID: 1, AppName: "a", Summary: "hi", Timestamp: time.Now()})
	require.Len(t, <-ch, 1)
	require.Never(t, func() bool { return len(m.Popups.Get()) != 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestMonitor_InvokeActionPublishesActionInvoked(t *testing.T) {
	m := NewMonitor(nil, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	actions, stop := m.ActionEvents()
	defer stop()

	m.InvokeAction(7, "default")

	select {
	case ev := <-actions:
		require.Equal(t, uint32(7), ev.ID)
		require.Equal(t, "default", ev.Key)
	case <-time.After(time.Second):
		t.Fatal("expected ActionInvoked event")
	}
}
