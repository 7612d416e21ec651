// Package pipeline implements the debounced, memoized request pipeline used by
// autocomplete: fetch -> Memoizer -> Debouncer -> caller.
//
// Rapid calls on one Pipeline collapse into at most one fetch per quiet window,
// and an argument whose result is cached is never fetched again. Callers tell a
// superseded call from a failed one with IsSuperseded.
package pipeline

import (
	"context"
	"time"
)

// DefaultWait is the quiet period between the last call and the fetch.
const DefaultWait = 300 * time.Millisecond

// Pipeline debounces calls into a memoized fetch.
type Pipeline[A, V any] struct {
	memo     *Memoizer[A, V]
	debounce *Debouncer[A, V]
}

// NewPipeline wraps fetch in its own Memoizer and a Debouncer with the given
// quiet period. A non-positive wait uses DefaultWait.
func NewPipeline[A, V any](fetch Func[A, V], wait time.Duration, opts ...MemoOption[A, V]) *Pipeline[A, V] {
	return NewPipelineWithMemo(NewMemoizer(fetch, opts...), wait)
}

// NewPipelineWithMemo debounces an existing Memoizer, so several pipelines can
// share one cache while debouncing independently.
func NewPipelineWithMemo[A, V any](memo *Memoizer[A, V], wait time.Duration) *Pipeline[A, V] {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Pipeline[A, V]{
		memo:     memo,
		debounce: NewDebouncer(wait, memo.Func()),
	}
}

func (p *Pipeline[A, V]) Get(ctx context.Context, arg A) (V, error) {
	return p.debounce.Do(ctx, arg)
}

// Cancel rejects the pending call, if any.
func (p *Pipeline[A, V]) Cancel() {
	p.debounce.Cancel()
}

func (p *Pipeline[A, V]) Memoizer() *Memoizer[A, V] {
	return p.memo
}
