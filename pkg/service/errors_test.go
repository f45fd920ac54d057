package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKindAcrossOp(t *testing.T) {
	err := New("audio", KindTimeout, "set_volume", nil)
	sentinel := New("audio", KindTimeout, "", nil)
	require.True(t, errors.Is(err, sentinel))

	other := New("audio", KindOperationFailed, "set_volume", nil)
	require.False(t, errors.Is(other, sentinel))
}

func TestError_IsRespectsService(t *testing.T) {
	err := New("notification", KindTimeout, "Notify", nil)
	sentinel := New("audio", KindTimeout, "", nil)
	require.False(t, errors.Is(err, sentinel))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New("systray", KindBusTransport, "connect", cause)
	require.ErrorIs(t, err, cause)
}
