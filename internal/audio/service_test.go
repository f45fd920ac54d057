package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/jfreymuth/pulse/proto"
	"github.com/stretchr/testify/require"

	"github.com/pozitronik/wayle/pkg/service"
)

func TestGet_SurfacesBusTransportErrorWhenNoServer(t *testing.T) {
	// No PulseAudio server is reachable in this environment, so Get
	// must fail fast with a KindBusTransport error rather than hang.
	_, err := Get(context.Background())
	require.Error(t, err)

	var svcErr *service.Error
	require.True(t, errors.As(err, &svcErr))
	require.Equal(t, service.KindBusTransport, svcErr.Kind)
}

func TestService_RepublishLocked_SplitsStreamsByKind(t *testing.T) {
	s := newService()
	s.streamByIndex[1] = NewAudioStream(StreamPlayback, 1, "app-a", 10)
	s.streamByIndex[2] = NewAudioStream(StreamRecording, 2, "app-b", 11)

	s.mu.Lock()
	s.republishLocked()
	s.mu.Unlock()

	require.Len(t, s.PlaybackStreams.Get(), 1)
	require.Len(t, s.RecordingStreams.Get(), 1)
}

func TestService_ResolveTarget_DisambiguatesByLocalMaps(t *testing.T) {
	s := newService()
	s.outputByIndex[1] = NewOutputDevice(1, "sink", "Sink")
	s.inputByIndex[2] = NewInputDevice(2, "source", "Source")
	s.streamByIndex[3] = NewAudioStream(StreamPlayback, 3, "app", 1)
	s.streamByIndex[4] = NewAudioStream(StreamRecording, 4, "app", 2)

	target, err := s.resolveTarget(1)
	require.NoError(t, err)
	require.Equal(t, targetOutput, target)

	target, err = s.resolveTarget(2)
	require.NoError(t, err)
	require.Equal(t, targetInput, target)

	target, err = s.resolveTarget(3)
	require.NoError(t, err)
	require.Equal(t, targetPlaybackStream, target)

	target, err = s.resolveTarget(4)
	require.NoError(t, err)
	require.Equal(t, targetRecordingStream, target)

	_, err = s.resolveTarget(99)
	require.Error(t, err)

	var svcErr *service.Error
	require.True(t, errors.As(err, &svcErr))
	require.Equal(t, service.KindObjectNotFound, svcErr.Kind)
}

func TestService_ApplyDefaultsLocked_MarksDefaultByName(t *testing.T) {
	s := newService()
	s.outputByIndex[1] = NewOutputDevice(1, "alsa_output.a", "Speakers")
	s.outputByIndex[2] = NewOutputDevice(2, "alsa_output.b", "Headphones")

	s.mu.Lock()
	s.applyDefaultsLocked(proto.GetServerInfoReply{DefaultSinkName: "alsa_output.b"})
	s.mu.Unlock()

	require.False(t, s.outputByIndex[1].IsDefault.Get())
	require.True(t, s.outputByIndex[2].IsDefault.Get())
	require.Equal(t, s.outputByIndex[2], s.DefaultOutput.Get())
}
