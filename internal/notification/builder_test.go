package notification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_Build_PairsActionsAndAllocatesID(t *testing.T) {
	b := NewBuilder(NewIDAllocator(0))

	n := b.Build(NotifyRequest{
		AppName: "wayle-test",
		Summary: "hello",
		Actions: []string{"default", "Open", "dismiss", "Dismiss"},
		Hints:   map[string]any{"transient": true},
	})

	require.Equal(t, uint32(1), n.ID)
	require.Equal(t, []Action{{Key: "default", Label: "Open"}, {Key: "dismiss", Label: "Dismiss"}}, n.Actions)
	require.True(t, n.Transient)
}

func TestBuilder_Build_ReplacesIDReused(t *testing.T) {
	b := NewBuilder(NewIDAllocator(10))

	n := b.Build(NotifyRequest{ReplacesID: 3, Summary: "replace"})
	require.Equal(t, uint32(3), n.ID)
}

func TestBuilder_Build_OddActionsDropsTrailingKey(t *testing.T) {
	b := NewBuilder(NewIDAllocator(0))

	n := b.Build(NotifyRequest{Summary: "x", Actions: []string{"default", "Open", "orphan"}})
	require.Len(t, n.Actions, 1)
}
