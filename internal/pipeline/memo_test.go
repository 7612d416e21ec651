package pipeline

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

func countingFetch(calls *atomic.Int32) Func[[]any, string] {
	return func(_ context.Context, args []any) (string, error) {
		calls.Add(1)
		key, _ := JoinKey(args)
		return "result-" + key, nil
	}
}

func TestMemoizerCachesSameKey(t *testing.T) {
	var calls atomic.Int32
	m := NewMemoizer(countingFetch(&calls))
	ctx := context.Background()

	first, err := m.Do(ctx, []any{"x"})
	require.NoError(t, err)
	second, err := m.Do(ctx, []any{"x"})
	require.NoError(t, err)

	assert.Equal(t, "result-x", first)
	assert.Equal(t, "result-x", second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, m.Cache().Len())
}

func TestMemoizerDistinctKeys(t *testing.T) {
	var calls atomic.Int32
	m := NewMemoizer(countingFetch(&calls))
	ctx := context.Background()

	for _, q := range []string{"a", "b", "a", "c", "b"} {
		_, err := m.Do(ctx, []any{q})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}

// JoinKey keeps the collision of arguments that print alike.
func TestMemoizerJoinKeyCollision(t *testing.T) {
	var calls atomic.Int32
	m := NewMemoizer(countingFetch(&calls), WithKey[[]any, string](JoinKey))
	ctx := context.Background()

	first, err := m.Do(ctx, []any{"x"})
	require.NoError(t, err)
	second, err := m.Do(ctx, []any{printsX{id: 1}})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemoizerHashKeySeparatesLookalikes(t *testing.T) {
	var calls atomic.Int32
	m := NewMemoizer(countingFetch(&calls))
	ctx := context.Background()

	_, err := m.Do(ctx, []any{"x"})
	require.NoError(t, err)
	_, err = m.Do(ctx, []any{printsX{id: 1}})
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestMemoizerDoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	m := NewMemoizer(func(_ context.Context, q string) (string, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}
		return "ok", nil
	})
	ctx := context.Background()

	_, err := m.Do(ctx, "q")
	assert.ErrorIs(t, err, boom)

	v, err := m.Do(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemoizerKeyError(t *testing.T) {
	var calls atomic.Int32
	keyErr := errors.New("no key")
	m := NewMemoizer(countingFetch(&calls), WithKey[[]any, string](func([]any) (string, error) {
		return "", keyErr
	}))

	_, err := m.Do(context.Background(), []any{"x"})
	assert.ErrorIs(t, err, keyErr)
	assert.Equal(t, int32(0), calls.Load())
}

func TestMemoizerConcurrentMissesShareCall(t *testing.T) {
	var calls atomic.Int32
	m := NewMemoizer(func(_ context.Context, q string) (string, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return q + "!", nil
	})

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = m.Do(context.Background(), "go")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "go!", r)
	}
}

func TestMemoizerMissHookAndSharedCache(t *testing.T) {
	cache := NewMapCache[string]()
	var misses []string
	fetch := func(_ context.Context, q string) (string, error) { return q, nil }

	a := NewMemoizer(fetch, WithCache[string, string](cache), WithMissHook[string, string](func(q string) {
		misses = append(misses, q)
	}))
	b := NewMemoizer(fetch, WithCache[string, string](cache))

	_, _ = a.Do(context.Background(), "shared")
	_, _ = b.Do(context.Background(), "shared")

	assert.Equal(t, []string{"shared"}, misses)
	assert.Equal(t, 1, cache.Len())
}

func TestRistrettoCache(t *testing.T) {
	cache, err := NewRistrettoCache[string](100)
	require.NoError(t, err)
	defer cache.Close()

	var calls atomic.Int32
	m := NewMemoizer(func(_ context.Context, q string) (string, error) {
		calls.Add(1)
		return q, nil
	}, WithCache[string, string](cache))

	_, err = m.Do(context.Background(), "a")
	require.NoError(t, err)
	_, err = m.Do(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	key, err := HashKey("a")
	require.NoError(t, err)
	v, ok := cache.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestMemoizerNilInterfaceResult(t *testing.T) {
	var calls atomic.Int32
	m := NewMemoizer(func(context.Context, string) (any, error) {
		calls.Add(1)
		return nil, nil
	})

	v, err := m.Do(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = m.Do(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemoizerWaiterOutlivesCancelledCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	m := NewMemoizer(func(ctx context.Context, q string) (string, error) {
		calls.Add(1)
		close(started)
		select {
		case <-release:
			return q + "-ops", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := m.Do(ctxA, "dev")
		errA <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := m.Do(context.Background(), "dev")
		resB <- result{v, err}
	}()
	// let B join the in-flight call
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	got := <-resB
	require.NoError(t, got.err)
	assert.Equal(t, "dev-ops", got.v)
	assert.Equal(t, int32(1), calls.Load())

	// the shared call still filled the cache
	v, err := m.Do(context.Background(), "dev")
	require.NoError(t, err)
	assert.Equal(t, "dev-ops", v)
	assert.Equal(t, int32(1), calls.Load())
}
