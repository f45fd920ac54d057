package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReconnector_SucceedsEventually(t *testing.T) {
	r := Reconnector{BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	attempts := 0

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := r.Run(ctx, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestReconnector_StopsOnContextCancel(t *testing.T) {
	r := Reconnector{BaseDelay: 10 * time.Millisecond, MaxDelay: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := r.Run(ctx, func() error {
		return errors.New("always fails")
	})

	require.ErrorIs(t, err, context.Canceled)
}
