package notification

import "time"

// NotifyRequest is the raw FDO Notify() call payload, prior to
// validation and id allocation.
type NotifyRequest struct {
	AppName       string
	ReplacesID    uint32
	Icon          string
	Summary       string
	Body          string
	Actions       []string // flattened key,label,key,label,...
	Hints         map[string]any
	ExpireTimeout int32
}

// Builder constructs Notification values from raw Notify requests, kept
// separate from monitor's state-machine loop the way
// the original splits builder.rs from the monitoring task.
type Builder struct {
	ids *idAllocator
}

// NewBuilder constructs a Builder around the shared id allocator.
func NewBuilder(ids *idAllocator) *Builder {
	return &Builder{ids: ids}
}

// Build allocates req's id and returns a Notification ready to broadcast
// as Add. The request fields are copied as given, without validation.
func (b *Builder) Build(req NotifyRequest) Notification {
	id := b.ids.allocate(req.ReplacesID)

	notif := Notification{
		ID:            id,
		ReplacesID:    req.ReplacesID,
		AppName:       req.AppName,
		Icon:          req.Icon,
		Summary:       req.Summary,
		Body:          req.Body,
		Actions:       pairActions(req.Actions),
		Hints:         req.Hints,
		ExpireTimeout: req.ExpireTimeout,
		Timestamp:     time.Now(),
	}

	// RemoveExpired and DoNotDisturb are not taken from the sending
	// application's hints: they're global, user-configurable switches
	// the Monitor applies at add-time from internal/config, so a
	// misbehaving or malicious app can't opt itself out of do-not-
	// disturb. boolHint is kept for transient, the one FDO hint that is
	// legitimately per-notification.
	notif.Transient = boolHint(req.Hints, "transient")
	return notif
}

// pairActions flattens the FDO [key1, label1, key2, label2, ...] array
// into (key, label) pairs, dropping a trailing unpaired key.
func pairActions(raw []string) []Action {
	if len(raw) < 2 {
		return nil
	}
	actions := make([]Action, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		actions = append(actions, Action{Key: raw[i], Label: raw[i+1]})
	}
	return actions
}

func boolHint(hints map[string]any, key string) bool {
	v, ok := hints[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
