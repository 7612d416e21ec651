package pipeline

import (
	"sync"
	"time"
)

// Task is a function scheduled to run once after a delay. It can be cancelled
// until it starts running.
type Task struct {
	mu      sync.Mutex
	timer   *time.Timer
	started bool
	done    chan struct{}
	once    sync.Once
}

// Schedule arms a Task that runs fn after d.
func Schedule(d time.Duration, fn func()) *Task {
	t := &Task{done: make(chan struct{})}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.started {
			// cancelled after the timer already fired
			t.mu.Unlock()
			return
		}
		t.started = true
		t.mu.Unlock()

		defer t.finish()
		fn()
	})
	return t
}

// Cancel stops the task. It reports true if fn will never run because of this call.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return false
	}
	t.started = true
	t.timer.Stop()
	t.finish()
	return true
}

// Done is closed once fn has returned or the task was cancelled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) finish() {
	t.once.Do(func() { close(t.done) })
}
