package reactive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProperty_GetAfterSet(t *testing.T) {
	p := New(0)
	p.Set(42)
	require.Equal(t, 42, p.Get())
}

func TestProperty_EqualSetPublishesOnce(t *testing.T) {
	p := New("a")
	ch, stop := p.Watch()
	defer stop()

	p.Set("b")
	p.Set("b") // no change, must not publish again

	select {
	case v := <-ch:
		require.Equal(t, "b", v)
	case <-time.After(time.Second):
		t.Fatal("expected one publication")
	}

	select {
	case v := <-ch:
		t.Fatalf("unexpected second publication: %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProperty_DistinctSetsPublishInOrder(t *testing.T) {
	p := New(0)
	ch, stop := p.Watch()
	defer stop()

	p.Set(1)
	p.Set(2)

	require.Equal(t, 1, <-ch)
	require.Equal(t, 2, <-ch)
}

func TestProperty_LateWatcherMissesPriorValue(t *testing.T) {
	p := New(0)
	p.Set(1)

	ch, stop := p.Watch()
	defer stop()

	select {
	case v := <-ch:
		t.Fatalf("watcher should not see pre-subscription value, got %v", v)
	case <-time.After(50 * time.Millisecond):
	}

	p.Set(2)
	require.Equal(t, 2, <-ch)
}

func TestProperty_IndependentWatchers(t *testing.T) {
	p := New(0)
	ch1, stop1 := p.Watch()
	defer stop1()
	ch2, stop2 := p.Watch()
	defer stop2()

	p.Set(5)
	require.Equal(t, 5, <-ch1)
	require.Equal(t, 5, <-ch2)
}

func TestProperty_SlowWatcherDoesNotBlockSetter(t *testing.T) {
	p := New(0)
	ch, stop := p.Watch()
	defer stop()

	done := make(chan struct{})
	go func() {
		for i := 1; i <= watchBufferSize*4; i++ {
			p.Set(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("setter blocked on slow watcher")
	}

	// Drain; the exact sequence received is unspecified under overflow,
	// but the final value must be observable via Get regardless.
	for {
		select {
		case <-ch:
		default:
			require.Equal(t, watchBufferSize*4, p.Get())
			return
		}
	}
}

func TestProperty_UnwatchClosesChannel(t *testing.T) {
	p := New(0)
	ch, stop := p.Watch()
	stop()

	_, ok := <-ch
	require.False(t, ok)
}
