package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to a debounced call that a newer call replaced
// before its quiet period elapsed.
var ErrSuperseded = errors.New("pipeline: call superseded")

// IsSuperseded reports whether err is a supersession rather than a failure of
// the wrapped function.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}

type result[V any] struct {
	val V
	err error
}

type pendingCall[A, V any] struct {
	task *Task
	done chan result[V]
}

// Debouncer delays calls to fn until wait has passed without a newer call.
// At most one call is pending at a time; a newer call rejects the pending one
// with ErrSuperseded before arming its own timer.
type Debouncer[A, V any] struct {
	wait time.Duration
	fn   Func[A, V]

	mu      sync.Mutex
	pending *pendingCall[A, V]
}

func NewDebouncer[A, V any](wait time.Duration, fn Func[A, V]) *Debouncer[A, V] {
	return &Debouncer[A, V]{wait: wait, fn: fn}
}

// Do blocks until fn ran with arg, a newer call superseded this one, or ctx ended.
func (d *Debouncer[A, V]) Do(ctx context.Context, arg A) (V, error) {
	call := d.schedule(ctx, arg)

	select {
	case r := <-call.done:
		return r.val, r.err
	case <-ctx.Done():
		d.abandon(call)
		// fn may have already started for this call
		select {
		case r := <-call.done:
			return r.val, r.err
		default:
		}
		var zero V
		return zero, ctx.Err()
	}
}

// Pending reports whether a call is waiting for its quiet period to elapse.
func (d *Debouncer[A, V]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Cancel rejects the pending call, if any, with ErrSuperseded.
func (d *Debouncer[A, V]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supersedeLocked()
}

func (d *Debouncer[A, V]) schedule(ctx context.Context, arg A) *pendingCall[A, V] {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.supersedeLocked()

	call := &pendingCall[A, V]{done: make(chan result[V], 1)}
	call.task = Schedule(d.wait, func() { d.fire(ctx, arg, call) })
	d.pending = call
	return call
}

func (d *Debouncer[A, V]) supersedeLocked() {
	prev := d.pending
	if prev == nil {
		return
	}
	d.pending = nil
	// fire checks d.pending under the lock, so prev's fn can no longer run even
	// if its timer already went off
	prev.task.Cancel()
	prev.done <- result[V]{err: ErrSuperseded}
}

func (d *Debouncer[A, V]) fire(ctx context.Context, arg A, call *pendingCall[A, V]) {
	d.mu.Lock()
	if d.pending != call {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()

	val, err := d.fn(ctx, arg)
	call.done <- result[V]{val: val, err: err}
}

func (d *Debouncer[A, V]) abandon(call *pendingCall[A, V]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == call {
		d.pending = nil
	}
	call.task.Cancel()
}
