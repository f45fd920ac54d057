package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pozitronik/wayle/internal/config"
	"github.com/pozitronik/wayle/internal/log"
	"github.com/pozitronik/wayle/pkg/eventbus"
	"github.com/pozitronik/wayle/pkg/reactive"
)

// event is what flows through the monitor's broadcast channel: either
// an Add or a Remove.
type event struct {
	add    *Notification
	removeID     uint32
	removeReason CloseReason
	isRemove     bool
}

func addEvent(n Notification) event    { return event{add: &n} }
func removeEvent(id uint32, reason CloseReason) event {
	return event{isRemove: true, removeID: id, removeReason: reason}
}

// Closed carries the payload for the NotificationClosed D-Bus signal.
type Closed struct {
	ID     uint32
	Reason CloseReason
}

// ActionInvoked carries the payload for the ActionInvoked D-Bus signal,
// published when the shell's own UI (a popup or the persisted list)
// triggers one of a notification's actions.
type ActionInvoked struct {
	ID  uint32
	Key string
}

// Monitor is the single task driving the notification state machine:
// it owns the canonical list and popup sub-list as reactive properties,
// persists through store, and publishes Closed/ActionInvoked events on
// their buses for the D-Bus daemon to relay.
type Monitor struct {
	Notifications *reactive.Property[[]Notification]
	Popups        *reactive.Property[[]Notification]

	events    chan event
	closedBus *eventbus.Bus[Closed]
	actionBus *eventbus.Bus[ActionInvoked]

	cfg config.NotificationConfig

	store *Store // nil when persistence is disabled
	log   zerolog.Logger
}

// NewMonitor constructs a Monitor. store may be nil (persistence
// disabled). cfg carries the notification section's do-not-disturb,
// popup-duration, and remove-expired switches: all three are global,
// user-configurable properties, never derived from a hint the sending
// application supplies.
func NewMonitor(store *Store, cfg config.NotificationConfig) *Monitor {
	return &Monitor{
		Notifications: reactive.New[[]Notification](nil),
		Popups:        reactive.New[[]Notification](nil),
		events:        make(chan event, 256),
		closedBus:     eventbus.New[Closed](eventbus.DefaultCapacity),
		actionBus:     eventbus.New[ActionInvoked](eventbus.DefaultCapacity),
		cfg:           cfg,
		store:         store,
		log:           log.WithComponent("notification.monitor"),
	}
}

// ClosedEvents exposes the broadcast channel of NotificationClosed
// payloads for the daemon to forward as a D-Bus signal.
func (m *Monitor) ClosedEvents() (<-chan Closed, func()) {
	return m.closedBus.Subscribe()
}

// ActionEvents exposes the broadcast channel of ActionInvoked payloads
// for the daemon to forward as a D-Bus signal.
func (m *Monitor) ActionEvents() (<-chan ActionInvoked, func()) {
	return m.actionBus.Subscribe()
}

// InvokeAction records that the shell's UI triggered actionKey on
// notification id and publishes ActionInvoked. It does not remove the
// notification; callers that want close-on-invoke semantics submit a
// Remove separately, matching the FDO spec's decoupling of the two
// signals.
func (m *Monitor) InvokeAction(id uint32, actionKey string) {
	m.actionBus.Publish(ActionInvoked{ID: id, Key: actionKey})
}

// SubmitAdd enqueues an Add event, the entry point used by the daemon's
// Notify method handler.
func (m *Monitor) SubmitAdd(n Notification) {
	m.events <- addEvent(n)
}

// SubmitRemove enqueues a Remove event, used by CloseNotification and
// by TTL timers.
func (m *Monitor) SubmitRemove(id uint32, reason CloseReason) {
	m.events <- removeEvent(id, reason)
}

// Run drives the core loop until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.events:
			if ev.isRemove {
				m.handleRemove(ev.removeID, ev.removeReason)
			} else {
				m.handleAdd(ctx, *ev.add)
			}
		}
	}
}

func (m *Monitor) handleAdd(ctx context.Context, n Notification) {
	n.RemoveExpired = m.cfg.RemoveExpired.Get()

	if !n.IsTransient() {
		m.upsertList(n)
		if m.store != nil {
			if err := m.store.Insert(n); err != nil {
				m.log.Warn().Err(err).Uint32("id", n.ID).Msg("failed to persist notification")
			}
		}
	}

	if !m.cfg.DoNotDisturb.Get() {
		m.upsertPopups(n)
		go m.scheduleRemoval(ctx, n.ID, popupFromPopups, m.cfg.PopupDuration.Get())
	}

	if deadline, ok := n.effectiveExpiry(); ok {
		if remaining := time.Until(deadline); remaining <= 0 {
			m.handleRemove(n.ID, ReasonExpired)
		} else {
			go m.scheduleExpiry(ctx, n.ID, remaining)
		}
	}
}

type removalTarget int

const (
	popupFromPopups removalTarget = iota
)

func (m *Monitor) scheduleRemoval(ctx context.Context, id uint32, _ removalTarget, after time.Duration) {
	timer := time.NewTimer(after)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
		m.removeFromPopups(id)
	}
}

func (m *Monitor) scheduleExpiry(ctx context.Context, id uint32, after time.Duration) {
	timer := time.NewTimer(after)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
		m.SubmitRemove(id, ReasonExpired)
	}
}

func (m *Monitor) handleRemove(id uint32, reason CloseReason) {
	removedFromList := m.removeFromList(id)
	removedFromPopups := m.removeFromPopups(id)

	if removedFromList && m.store != nil {
		if err := m.store.Delete(id); err != nil {
			m.log.Warn().Err(err).Uint32("id", id).Msg("failed to delete persisted notification")
		}
	}
	if removedFromList || removedFromPopups {
		m.closedBus.Publish(Closed{ID: id, Reason: reason})
	}
}

func (m *Monitor) upsertList(n Notification) {
	current := m.Notifications.Get()
	next := make([]Notification, 0, len(current)+1)
	next = append(next, n)
	for _, existing := range current {
		if existing.ID != n.ID {
			next = append(next, existing)
		}
	}
	m.Notifications.Set(next)
}

func (m *Monitor) upsertPopups(n Notification) {
	current := m.Popups.Get()
	next := make([]Notification, 0, len(current)+1)
	next = append(next, n)
	for _, existing := range current {
		if existing.ID != n.ID {
			next = append(next, existing)
		}
	}
	m.Popups.Set(next)
}

func (m *Monitor) removeFromList(id uint32) bool {
	current := m.Notifications.Get()
	next, removed := without(current, id)
	if removed {
		m.Notifications.Set(next)
	}
	return removed
}

func (m *Monitor) removeFromPopups(id uint32) bool {
	current := m.Popups.Get()
	next, removed := without(current, id)
	if removed {
		m.Popups.Set(next)
	}
	return removed
}

func without(list []Notification, id uint32) ([]Notification, bool) {
	next := make([]Notification, 0, len(list))
	removed := false
	for _, n := range list {
		if n.ID == id {
			removed = true
			continue
		}
		next = append(next, n)
	}
	return next, removed
}
