package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProperty_DefaultWhenNoLayers(t *testing.T) {
	p := NewProperty(32)
	require.Equal(t, 32, p.Get())
}

func TestProperty_ConfigLayerOverridesDefault(t *testing.T) {
	p := NewProperty(32)
	p.ApplyConfigLayer(64)
	require.Equal(t, 64, p.Get())
}

func TestProperty_RuntimeLayerOverridesConfig(t *testing.T) {
	p := NewProperty(32)
	p.ApplyConfigLayer(64)
	p.Set(128)
	require.Equal(t, 128, p.Get())
	require.True(t, p.HasRuntimeLayer())
}

func TestProperty_ClearConfigLayerFallsBackToDefault(t *testing.T) {
	p := NewProperty("console")
	p.ApplyConfigLayer("json")
	p.ClearConfigLayer()
	require.Equal(t, "console", p.Get())
}

func TestProperty_WatchYieldsOnEffectiveChange(t *testing.T) {
	p := NewProperty(32)
	ch, stop := p.Watch()
	defer stop()

	p.ApplyConfigLayer(40)
	require.Equal(t, 40, <-ch)
}
