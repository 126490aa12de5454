// Package async re-exposes the synchronous data access adapter contract as
// task-returning asynchronous operations. Each call constructs a fresh
// adapter, runs the synchronous operation on a worker goroutine and releases
// the adapter when the call completes, so the calling goroutine never blocks
// on the database.
package async

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Task is the completion handle of one dispatched operation. The zero value
// is not usable; tasks are created by the wrapper.
type Task[T any] struct {
	id        ulid.ULID
	operation string
	done      chan struct{}
	value     T
	err       error
}

func newTask[T any](operation string) *Task[T] {
	return &Task[T]{
		id:        ulid.Make(),
		operation: operation,
		done:      make(chan struct{}),
	}
}

// complete publishes the outcome. Must be called exactly once.
func (t *Task[T]) complete(value T, err error) {
	t.value = value
	t.err = err
	close(t.done)
}

// ID returns the task's unique identifier.
func (t *Task[T]) ID() ulid.ULID {
	return t.id
}

// Operation returns the name of the dispatched operation.
func (t *Task[T]) Operation() string {
	return t.operation
}

// Done returns a channel closed when the operation has completed.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result blocks until the operation completes and returns its outcome.
func (t *Task[T]) Result() (T, error) {
	<-t.done
	return t.value, t.err
}

// Wait blocks until the operation completes or ctx is done. Cancelling ctx
// abandons the wait only; the dispatched operation always runs to completion.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
