package pipeline

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Func is the asynchronous call shape every stage of the pipeline wraps.
type Func[A, V any] func(ctx context.Context, arg A) (V, error)

// Memoizer caches successful results of fn by key. Failed calls are not cached,
// so a later call with the same key invokes fn again.
type Memoizer[A, V any] struct {
	fn    Func[A, V]
	key   KeyFunc[A]
	cache Cache[V]
	group singleflight.Group
	calls func(A)
}

// MemoOption customises a Memoizer.
type MemoOption[A, V any] func(*Memoizer[A, V])

// WithKey replaces the default structural key derivation.
func WithKey[A, V any](key KeyFunc[A]) MemoOption[A, V] {
	return func(m *Memoizer[A, V]) { m.key = key }
}

// WithCache makes the Memoizer store results in a caller-owned cache.
func WithCache[A, V any](cache Cache[V]) MemoOption[A, V] {
	return func(m *Memoizer[A, V]) { m.cache = cache }
}

// WithMissHook registers a callback run before every invocation of fn.
func WithMissHook[A, V any](hook func(A)) MemoOption[A, V] {
	return func(m *Memoizer[A, V]) { m.calls = hook }
}

func NewMemoizer[A, V any](fn Func[A, V], opts ...MemoOption[A, V]) *Memoizer[A, V] {
	m := &Memoizer[A, V]{fn: fn}
	for _, opt := range opts {
		opt(m)
	}
	if m.key == nil {
		m.key = HashKey[A]
	}
	if m.cache == nil {
		m.cache = NewMapCache[V]()
	}
	return m
}

// Do returns the cached result for arg, or invokes fn and caches its result.
// Concurrent misses on the same key share one invocation of fn. The shared
// invocation does not inherit the caller's cancellation: a caller whose ctx
// ends stops waiting with ctx.Err(), while fn runs on for the other waiters.
func (m *Memoizer[A, V]) Do(ctx context.Context, arg A) (V, error) {
	var zero V
	key, err := m.key(arg)
	if err != nil {
		return zero, err
	}
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}

	flight := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		// another caller may have filled the key while we waited on the group
		if v, ok := m.cache.Get(key); ok {
			return v, nil
		}
		if m.calls != nil {
			m.calls(arg)
		}
		v, err := m.fn(flight, arg)
		if err != nil {
			return nil, err
		}
		m.cache.Set(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		// a nil interface result carries no dynamic type
		v, _ := res.Val.(V)
		return v, nil
	}
}

// Func exposes Do with the wrapped function's signature.
func (m *Memoizer[A, V]) Func() Func[A, V] {
	return m.Do
}

// Cache returns the cache backing the Memoizer.
func (m *Memoizer[A, V]) Cache() Cache[V] {
	return m.cache
}
