// Package audio wraps a PulseAudio connection behind wayle's reactive
// property model: device/stream discovery, volume/mute/default/port
// mutation, and push-driven refresh from PulseAudio's subscription
// callbacks. The mainloop/channel-bridging shape is grounded on the
// teacher's internal/wca device notifier (a dedicated OS thread owning
// a native audio API, its callbacks bridged to Go channels); the native
// library itself is github.com/jfreymuth/pulse.
package audio

import "github.com/pozitronik/wayle/pkg/reactive"

// MaxChannels bounds Volume's per-channel storage so the type stays a
// fixed-size array and therefore usable as a reactive.Property value
// (PulseAudio itself caps channel maps at 32; no device wayle targets
// exceeds a handful).
const MaxChannels = 8

// Volume is an ordered list of per-channel linear amplitudes, 1.0 ==
// 100%, values above 1.0 representing software boost — the same scale
// PulseAudio's CVolume uses once converted out of its fixed-point wire
// representation. It is a fixed array rather than a slice so it keeps
// working as a plain, directly-comparable value.
type Volume struct {
	Channels int
	Levels   [MaxChannels]float64
}

// VolumeMono builds a single-channel Volume.
func VolumeMono(level float64) Volume {
	v := Volume{Channels: 1}
	v.Levels[0] = level
	return v
}

// VolumeStereo builds a two-channel (left, right) Volume.
func VolumeStereo(left, right float64) Volume {
	v := Volume{Channels: 2}
	v.Levels[0] = left
	v.Levels[1] = right
	return v
}

// VolumeFromLevels builds a Volume from an arbitrary per-channel slice.
// Channels records len(levels), but only the first MaxChannels levels are
// stored, and AveragePercentage and the PulseAudio conversion use only
// those.
func VolumeFromLevels(levels []float64) Volume {
	v := Volume{Channels: len(levels)}
	n := len(levels)
	if n > MaxChannels {
		n = MaxChannels
	}
	copy(v.Levels[:n], levels[:n])
	return v
}

// AveragePercentage returns the mean of the populated channels as a
// percentage, e.g. VolumeStereo(0.5, 0.5).AveragePercentage() == 50.
func (v Volume) AveragePercentage() float64 {
	n := v.Channels
	if n <= 0 {
		return 0
	}
	if n > MaxChannels {
		n = MaxChannels
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += v.Levels[i]
	}
	return sum / float64(n) * 100
}

// Facility identifies the PulseAudio entity kind a subscription event
// names.
type Facility int

const (
	FacilitySink Facility = iota
	FacilitySource
	FacilitySinkInput
	FacilitySourceOutput
	FacilityServer
)

// DeviceState mirrors PulseAudio's sink/source run state.
type DeviceState string

const (
	StateRunning   DeviceState = "running"
	StateIdle      DeviceState = "idle"
	StateSuspended DeviceState = "suspended"
	StateUnknown   DeviceState = "unknown"
)

// SampleSpec is the device's negotiated sample format, grounded on
// PulseAudio's pa_sample_spec (format name, channel count, sample
// rate).
type SampleSpec struct {
	Format   string
	Channels uint8
	Rate     uint32
}

// Port is a physical jack/port a device can be routed through.
type Port struct {
	Name        string
	Description string
	Available   bool
}

// deviceCore holds the fields common to output and input devices; each
// is itself a bundle of Property[T] so per-field subscription works.
type deviceCore struct {
	Index       *reactive.Property[uint32]
	Name        *reactive.Property[string]
	Description *reactive.Property[string]
	Volume      *reactive.Property[Volume]
	Muted       *reactive.Property[bool]
	IsDefault   *reactive.Property[bool]
	State       *reactive.Property[DeviceState]
	SampleSpec  *reactive.Property[SampleSpec]
	ActivePort  *reactive.Property[string]
	Ports       *reactive.Property[[]Port]
}

func newDeviceCore(index uint32, name, description string) deviceCore {
	return deviceCore{
		Index:       reactive.New(index),
		Name:        reactive.New(name),
		Description: reactive.New(description),
		Volume:      reactive.New(VolumeMono(1.0)),
		Muted:       reactive.New(false),
		IsDefault:   reactive.New(false),
		State:       reactive.New(StateUnknown),
		SampleSpec:  reactive.New(SampleSpec{}),
		ActivePort:  reactive.New(""),
		Ports:       reactive.New[[]Port](nil),
	}
}

// OutputDevice mirrors a PulseAudio sink.
type OutputDevice struct{ deviceCore }

// InputDevice mirrors a PulseAudio source.
type InputDevice struct{ deviceCore }

// NewOutputDevice constructs an OutputDevice with its reactive fields
// seeded from an initial sink query.
func NewOutputDevice(index uint32, name, description string) *OutputDevice {
	return &OutputDevice{deviceCore: newDeviceCore(index, name, description)}
}

// NewInputDevice constructs an InputDevice from an initial source
// query.
func NewInputDevice(index uint32, name, description string) *InputDevice {
	return &InputDevice{deviceCore: newDeviceCore(index, name, description)}
}

// StreamKind distinguishes playback (sink-input) from recording
// (source-output) streams.
type StreamKind int

const (
	StreamPlayback StreamKind = iota
	StreamRecording
)

// AudioStream mirrors a PulseAudio sink-input or source-output.
type AudioStream struct {
	Kind        StreamKind
	Index       *reactive.Property[uint32]
	Application *reactive.Property[string]
	Binary      *reactive.Property[string]
	PID         *reactive.Property[uint32]
	Icon        *reactive.Property[string]
	MediaTitle  *reactive.Property[string]
	MediaArtist *reactive.Property[string]
	MediaAlbum  *reactive.Property[string]
	Volume      *reactive.Property[Volume]
	Muted       *reactive.Property[bool]
	Corked      *reactive.Property[bool]
	Latency     *reactive.Property[uint32]
	DeviceIndex *reactive.Property[uint32]
}

// NewAudioStream constructs an AudioStream with reactive fields seeded
// from an initial query.
func NewAudioStream(kind StreamKind, index uint32, application string, deviceIndex uint32) *AudioStream {
	return &AudioStream{
		Kind:        kind,
		Index:       reactive.New(index),
		Application: reactive.New(application),
		Binary:      reactive.New(""),
		PID:         reactive.New[uint32](0),
		Icon:        reactive.New(""),
		MediaTitle:  reactive.New(""),
		MediaArtist: reactive.New(""),
		MediaAlbum:  reactive.New(""),
		Volume:      reactive.New(VolumeMono(1.0)),
		Muted:       reactive.New(false),
		Corked:      reactive.New(false),
		Latency:     reactive.New[uint32](0),
		DeviceIndex: reactive.New(deviceIndex),
	}
}
