package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVolume_StereoAveragePercentage(t *testing.T) {
	v := VolumeStereo(0.5, 0.5)
	require.Equal(t, 2, v.Channels)
	require.InDelta(t, 50.0, v.AveragePercentage(), 0.0001)
}

func TestVolume_MonoAveragePercentage(t *testing.T) {
	v := VolumeMono(0.75)
	require.InDelta(t, 75.0, v.AveragePercentage(), 0.0001)
}

func TestVolume_FromLevelsTruncatesToMaxChannels(t *testing.T) {
	levels := make([]float64, MaxChannels+4)
	for i := range levels {
		levels[i] = 1.0
	}
	v := VolumeFromLevels(levels)
	require.Equal(t, MaxChannels+4, v.Channels)
	require.InDelta(t, 100.0, v.AveragePercentage(), 0.0001)
}

func TestVolume_ZeroChannelsAveragesToZero(t *testing.T) {
	var v Volume
	require.Equal(t, 0.0, v.AveragePercentage())
}
