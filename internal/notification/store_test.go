package notification

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "notifications.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestStore_InsertLoadDelete(t *testing.T) {
	s := openTestStore(t)

	n := Notification{
		ID: 1, AppName: "wayle-test", Summary: "hi", Body: "there",
		Actions: []Action{{Key: "default", Label: "Open"}},
		Hints:   map[string]any{"urgency": float64(1)},
		Timestamp: time.Now().Truncate(time.Second),
	}
	require.NoError(t, s.Insert(n))

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, n.AppName, loaded[0].AppName)
	require.Equal(t, n.Actions, loaded[0].Actions)

	require.NoError(t, s.Delete(1))
	loaded, err = s.LoadAll()
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestStore_MaxID(t *testing.T) {
	s := openTestStore(t)

	maxID, err := s.MaxID()
	require.NoError(t, err)
	require.Zero(t, maxID)

	require.NoError(t, s.Insert(Notification{ID: 5, AppName: "a", Summary: "s", Timestamp: time.Now()}))
	require.NoError(t, s.Insert(Notification{ID: 9, AppName: "a", Summary: "s", Timestamp: time.Now()}))

	maxID, err = s.MaxID()
	require.NoError(t, err)
	require.Equal(t, uint32(9), maxID)
}
