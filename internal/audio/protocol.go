package audio

// protocol.go is the only file in this package that talks proto.* wire
// types directly: one-shot bulk queries (GetServerInfo / Get*InfoList),
// the per-entity mutate commands SetVolume/SetMuted dispatch, and the
// conversion between PulseAudio's fixed-point ChannelVolumes and our
// Volume. Every other file in the package only ever sees OutputDevice /
// InputDevice / AudioStream.
//
// The field names assumed below follow the PulseAudio native protocol's
// own command/struct names (pulsecore/protocol-native.c,
// PA_SUBSCRIPTION_EVENT_*, PA_SAMPLE_* format codes) as mirrored by
// github.com/jfreymuth/pulse/proto; the numeric subscription event
// masks are taken directly from pulseaudio's public def.h, which is
// wire-stable across client library versions.

import (
	"fmt"

	"github.com/jfreymuth/pulse/proto"
)

// subscriptionMaskAll requests every facility's events, matching
// PulseAudio's PA_SUBSCRIPTION_MASK_ALL.
const subscriptionMaskAll = proto.SubscriptionMask(0x02ff)

// Subscription event bit layout, per PulseAudio's pa_subscription_event_type_t:
// the low nibble is the facility, the next two bits are the event type.
const (
	subscriptionFacilityMask         = 0x000f
	subscriptionFacilitySink         = 0x0000
	subscriptionFacilitySource       = 0x0001
	subscriptionFacilitySinkInput    = 0x0002
	subscriptionFacilitySourceOutput = 0x0003
	subscriptionFacilityServer       = 0x0007

	subscriptionTypeMask   = 0x0030
	subscriptionTypeRemove = 0x0020
)

func queryServerInfo(client *proto.Client) (proto.GetServerInfoReply, error) {
	var reply proto.GetServerInfoReply
	if err := client.Request(&proto.GetServerInfo{}, &reply); err != nil {
		return proto.GetServerInfoReply{}, fmt.Errorf("get server info: %w", err)
	}
	return reply, nil
}

func querySinks(client *proto.Client) ([]proto.SinkInfo, error) {
	var reply proto.GetSinkInfoListReply
	if err := client.Request(&proto.GetSinkInfoList{}, &reply); err != nil {
		return nil, fmt.Errorf("get sink info list: %w", err)
	}
	return reply, nil
}

func querySources(client *proto.Client) ([]proto.SourceInfo, error) {
	var reply proto.GetSourceInfoListReply
	if err := client.Request(&proto.GetSourceInfoList{}, &reply); err != nil {
		return nil, fmt.Errorf("get source info list: %w", err)
	}
	return reply, nil
}

func querySinkInputs(client *proto.Client) ([]proto.SinkInputInfo, error) {
	var reply proto.GetSinkInputInfoListReply
	if err := client.Request(&proto.GetSinkInputInfoList{}, &reply); err != nil {
		return nil, fmt.Errorf("get sink input info list: %w", err)
	}
	return reply, nil
}

func querySourceOutputs(client *proto.Client) ([]proto.SourceOutputInfo, error) {
	var reply proto.GetSourceOutputInfoListReply
	if err := client.Request(&proto.GetSourceOutputInfoList{}, &reply); err != nil {
		return nil, fmt.Errorf("get source output info list: %w", err)
	}
	return reply, nil
}

// volumeFromCVolume converts PulseAudio's per-channel fixed-point scale
// (proto.VolumeNorm == 100%) into our linear Volume.
func volumeFromCVolume(cv proto.ChannelVolumes) Volume {
	levels := make([]float64, len(cv))
	for i, c := range cv {
		levels[i] = float64(c) / float64(proto.VolumeNorm)
	}
	return VolumeFromLevels(levels)
}

func cvolumeFromVolume(v Volume) proto.ChannelVolumes {
	n := v.Channels
	if n <= 0 {
		n = 1
	}
	if n > MaxChannels {
		n = MaxChannels
	}
	cv := make(proto.ChannelVolumes, n)
	for i := 0; i < n; i++ {
		cv[i] = uint32(v.Levels[i] * float64(proto.VolumeNorm))
	}
	return cv
}

// sampleFormatName maps PulseAudio's PA_SAMPLE_* wire format codes to a
// readable name; unknown codes pass through as a hex number rather than
// failing the whole refresh.
func sampleFormatName(code byte) string {
	switch code {
	case 0:
		return "u8"
	case 1:
		return "alaw"
	case 2:
		return "ulaw"
	case 3:
		return "s16le"
	case 4:
		return "s16be"
	case 5:
		return "float32le"
	case 6:
		return "float32be"
	case 7:
		return "s32le"
	case 8:
		return "s32be"
	case 9:
		return "s24le"
	case 10:
		return "s24be"
	case 11:
		return "s24_32le"
	case 12:
		return "s24_32be"
	default:
		return fmt.Sprintf("format-0x%02x", code)
	}
}

func sampleSpecFromPulse(spec proto.SampleSpec) SampleSpec {
	return SampleSpec{Format: sampleFormatName(spec.Format), Channels: spec.Channels, Rate: spec.Rate}
}

func portsFromPulse(ports []proto.SinkPortInfo) []Port {
	out := make([]Port, 0, len(ports))
	for _, p := range ports {
		out = append(out, Port{Name: p.Name, Description: p.Description, Available: p.Available == 2})
	}
	return out
}

// deviceStateFromPulse maps pa_sink_state_t / pa_source_state_t (they
// share the same numbering) to DeviceState.
func deviceStateFromPulse(raw byte) DeviceState {
	switch raw {
	case 0:
		return StateRunning
	case 1:
		return StateIdle
	case 2:
		return StateSuspended
	default:
		return StateUnknown
	}
}

func propString(props proto.PropList, key string) string {
	if props == nil {
		return ""
	}
	if v, ok := props[key]; ok {
		return v.String()
	}
	return ""
}

func sinkToOutput(info proto.SinkInfo, defaultSinkName string) *OutputDevice {
	d := NewOutputDevice(info.SinkIndex, info.SinkName, info.SinkDescription)
	d.Volume.Set(volumeFromCVolume(info.Volume))
	d.Muted.Set(info.Mute)
	d.IsDefault.Set(info.SinkName == defaultSinkName)
	d.State.Set(deviceStateFromPulse(info.State))
	d.SampleSpec.Set(sampleSpecFromPulse(info.SampleSpec))
	d.ActivePort.Set(info.ActivePortName)
	d.Ports.Set(portsFromPulse(info.Ports))
	return d
}

func sourceToInput(info proto.SourceInfo, defaultSourceName string) *InputDevice {
	d := NewInputDevice(info.SourceIndex, info.SourceName, info.SourceDescription)
	d.Volume.Set(volumeFromCVolume(info.Volume))
	d.Muted.Set(info.Mute)
	d.IsDefault.Set(info.SourceName == defaultSourceName)
	d.State.Set(deviceStateFromPulse(info.State))
	d.SampleSpec.Set(sampleSpecFromPulse(info.SampleSpec))
	d.ActivePort.Set(info.ActivePortName)
	d.Ports.Set(portsFromPulse(info.Ports))
	return d
}

func sinkInputToStream(info proto.SinkInputInfo) *AudioStream {
	s := NewAudioStream(StreamPlayback, info.SinkInputIndex, info.SinkInputName, info.SinkIndex)
	s.Volume.Set(volumeFromCVolume(info.Volume))
	s.Muted.Set(info.Mute)
	s.Corked.Set(info.Corked)
	s.Latency.Set(uint32(info.Latency / 1000))
	s.Binary.Set(propString(info.Properties, "application.process.binary"))
	s.Icon.Set(propString(info.Properties, "application.icon_name"))
	s.MediaTitle.Set(propString(info.Properties, "media.title"))
	s.MediaArtist.Set(propString(info.Properties, "media.artist"))
	s.MediaAlbum.Set(propString(info.Properties, "media.album"))
	return s
}

func sourceOutputToStream(info proto.SourceOutputInfo) *AudioStream {
	s := NewAudioStream(StreamRecording, info.SourceOutputIndex, info.SourceOutputName, info.SourceIndex)
	s.Volume.Set(volumeFromCVolume(info.Volume))
	s.Muted.Set(info.Mute)
	s.Corked.Set(info.Corked)
	s.Latency.Set(uint32(info.Latency / 1000))
	s.Binary.Set(propString(info.Properties, "application.process.binary"))
	s.Icon.Set(propString(info.Properties, "application.icon_name"))
	s.MediaTitle.Set(propString(info.Properties, "media.title"))
	s.MediaArtist.Set(propString(info.Properties, "media.artist"))
	s.MediaAlbum.Set(propString(info.Properties, "media.album"))
	return s
}
