package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentReadsShareOneFetch(t *testing.T) {
	c := New(time.Minute)
	var calls int32
	release := make(chan struct{})
	fetch := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "v1", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Get(context.Background(), c, Key{"products", "list"}, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, "v1", v)
	}
}

func TestTTL(t *testing.T) {
	c := New(time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	n := 0
	fetch := func(context.Context) (int, error) { n++; return n, nil }

	v, _ := Get(context.Background(), c, Key{"industries"}, fetch)
	assert.Equal(t, 1, v)
	v, _ = Get(context.Background(), c, Key{"industries"}, fetch)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Second)
	v, _ = Get(context.Background(), c, Key{"industries"}, fetch)
	assert.Equal(t, 2, v)
}

func TestExpiredEntriesAreEvicted(t *testing.T) {
	c := New(time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()
	fetch := func(context.Context) (int, error) { return 1, nil }

	for page := 1; page <= 500; page++ {
		_, err := Get(ctx, c, Key{"products", "list", map[string]int{"page": page}}, fetch)
		require.NoError(t, err)
	}
	require.Equal(t, 500, c.Len())

	now = now.Add(2 * time.Second)
	// reading a stale key drops it
	_, err := Get(ctx, c, Key{"products", "list", map[string]int{"page": 1}}, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len(), "the write after the TTL sweeps every expired entry")

	now = now.Add(2 * time.Second)
	c.mu.Lock()
	_, ok := c.entries[Key{"products", "list", map[string]int{"page": 1}}.String()]
	c.mu.Unlock()
	require.True(t, ok)
	_, err = Get(ctx, c, Key{"categories"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestErrorsAreNotCached(t *testing.T) {
	c := New(time.Minute)
	boom := errors.New("down")
	_, err := Get(context.Background(), c, Key{"x"}, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := Get(context.Background(), c, Key{"x"}, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(time.Minute)
	put := func(k Key) {
		_, err := Get(context.Background(), c, k, func(context.Context) (string, error) { return "x", nil })
		require.NoError(t, err)
	}
	put(Key{"products", "list", map[string]any{"page": 1}})
	put(Key{"products", "detail", "valve"})
	put(Key{"productsx"})
	put(Key{"suppliers", "list"})

	c.Invalidate("products")
	assert.Equal(t, 2, c.Len(), "only keys under the products tuple are dropped")

	c.Invalidate()
	assert.Equal(t, 0, c.Len())
}

func TestInFlightReadDoesNotOutliveInvalidation(t *testing.T) {
	c := New(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, _ := Get(context.Background(), c, Key{"rfqs", "list"}, func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
		done <- v
	}()

	<-started
	c.Invalidate("rfqs")

	// a read after the invalidation must not join the stale flight
	fresh, err := Get(context.Background(), c, Key{"rfqs", "list"}, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", fresh)

	close(release)
	assert.Equal(t, "stale", <-done)

	v, err := Get(context.Background(), c, Key{"rfqs", "list"}, func(context.Context) (string, error) {
		return "refetched", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v, "the stale result was not written back")
}
