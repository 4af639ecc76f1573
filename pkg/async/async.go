package async

import (
	"context"
	"time"
)

// Task represents the eventual result of a computation started with Run.
type Task[T any] struct {
	value T
	err   error
	done  chan struct{}
}

// Run starts fn in its own goroutine and returns a Task for its result.
// The computation is not cancelled when the caller stops waiting; abandoned
// results are simply never observed.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}

	go func() {
		defer close(t.done)

		select {
		case <-ctx.Done():
			t.err = ctx.Err()
			return
		default:
		}

		t.value, t.err = fn(ctx)
	}()

	return t
}

// Await blocks until the task completes or ctx is cancelled.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitTimeout blocks for at most d and returns ErrTimeout if the task has not
// completed by then. The underlying goroutine keeps running; the caller must
// treat the task as abandoned and discard any late result.
func (t *Task[T]) AwaitTimeout(d time.Duration) (T, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-t.done:
		return t.value, t.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}

// Done reports completion without blocking.
func (t *Task[T]) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
