package notification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDAllocator_SeedsFromMaxPersisted(t *testing.T) {
	a := NewIDAllocator(41)
	require.Equal(t, uint32(42), a.allocate(0))
	require.Equal(t, uint32(43), a.allocate(0))
}

func TestIDAllocator_ReusesReplacesID(t *testing.T) {
	a := NewIDAllocator(0)
	require.Equal(t, uint32(7), a.allocate(7))
	require.Equal(t, uint32(1), a.allocate(0))
}
