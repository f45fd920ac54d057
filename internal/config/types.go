package config

import "time"

// Tree is wayle's root config tree. Every leaf is a *Property[T] so it
// can be assigned per-layer and watched individually; sub-structs group
// leaves the way config.toml's tables do ([general], [bar], [weather],
// [notification]).
type Tree struct {
	General      GeneralConfig
	Bar          BarConfig
	Weather      WeatherConfig
	Notification NotificationConfig
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	LogFormat *Property[string]
	LogLevel  *Property[string]
}

// BarConfig holds the shell bar's layout leaves that the (out-of-scope)
// widget tree binds to.
type BarConfig struct {
	Height *Property[int]
}

// WeatherConfig holds the weather provider's config leaf, including its
// secret-resolved API key (the HTTP client itself is out of scope; the
// leaf and its resolution are not).
type WeatherConfig struct {
	Key *Property[string]
}

// NotificationConfig holds the notification daemon's user-configurable
// knobs, all of it actually configurable rather than read per-request
// from the sending application: a global do-not-disturb switch, the
// default popup display duration, and whether a notification with a
// positive expire timeout is removed automatically once it elapses.
type NotificationConfig struct {
	DoNotDisturb  *Property[bool]
	PopupDuration *Property[time.Duration]
	RemoveExpired *Property[bool]
}

// NewTree constructs a Tree with its compiled defaults. Loader.Load
// layers config.toml and runtime.toml on top of this.
func NewTree() *Tree {
	return &Tree{
		General: GeneralConfig{
			LogFormat: NewProperty("console"),
			LogLevel:  NewProperty("info"),
		},
		Bar: BarConfig{
			Height: NewProperty(0),
		},
		Weather: WeatherConfig{
			Key: NewProperty(""),
		},
		Notification: NotificationConfig{
			DoNotDisturb:  NewProperty(false),
			PopupDuration: NewProperty(5 * time.Second),
			RemoveExpired: NewProperty(true),
		},
	}
}

// leafPaths enumerates every leaf by dotted path, used by the loader's
// tree-walk to apply parsed TOML tables to the matching Property.
func (t *Tree) leafPaths() map[string]any {
	return map[string]any{
		"general.log_format":          t.General.LogFormat,
		"general.log_level":           t.General.LogLevel,
		"bar.height":                  t.Bar.Height,
		"weather.key":                 t.Weather.Key,
		"notification.dnd":            t.Notification.DoNotDisturb,
		"notification.popup_duration": t.Notification.PopupDuration,
		"notification.remove_expired": t.Notification.RemoveExpired,
	}
}
