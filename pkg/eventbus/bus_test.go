package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversToAllSubscribers(t *testing.T) {
	b := New[string](8)
	ch1, stop1 := b.Subscribe()
	defer stop1()
	ch2, stop2 := b.Subscribe()
	defer stop2()

	b.Publish("hello")

	require.Equal(t, "hello", <-ch1)
	require.Equal(t, "hello", <-ch2)
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	b := New[int](4)
	ch, stop := b.Subscribe()
	stop()

	_, ok := <-ch
	require.False(t, ok)
}

func TestBus_FullQueueDropsWithoutBlocking(t *testing.T) {
	b := New[int](2)
	_, stop := b.Subscribe()
	defer stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on full subscriber queue")
	}
}
