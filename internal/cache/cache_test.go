package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoaderMemoizes(t *testing.T) {
	l := New[string](time.Minute)
	var calls atomic.Int32

	fn := func() (string, error) {
		calls.Add(1)
		return "gems", nil
	}

	for range 3 {
		v, err := l.Get("gems_100", fn)
		require.NoError(t, err)
		require.Equal(t, "gems", v)
	}
	require.EqualValues(t, 1, calls.Load())

	l.Invalidate("gems_100")
	_, err := l.Get("gems_100", fn)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
}

func TestLoaderDoesNotCacheErrors(t *testing.T) {
	l := New[int](time.Minute)
	boom := errors.New("boom")

	_, err := l.Get("k", func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	require.Zero(t, l.Len())

	v, err := l.Get("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestLoaderSharesConcurrentMisses(t *testing.T) {
	l := New[int](time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get("k", func() (int, error) {
				calls.Add(1)
				<-release
				return 1, nil
			})
			require.NoError(t, err)
			require.Equal(t, 1, v)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	require.EqualValues(t, 1, calls.Load())
	require.Equal(t, 1, l.Len())
}
