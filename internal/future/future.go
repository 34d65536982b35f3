// Package future provides the pending-result handle returned by asynchronous
// data-fetcher invocations, plus the runner that executes the work off the
// calling goroutine.
package future

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Task is a unit of asynchronous work.
type Task func(ctx context.Context) (any, error)

// Handle is a pending-result placeholder. Submit returns it immediately; the
// value or error becomes observable once the task finishes. Safe for
// concurrent use by multiple waiters.
type Handle struct {
	done  chan struct{}
	value any
	err   error
}

func newHandle() *Handle { return &Handle{done: make(chan struct{})} }

func (h *Handle) complete(value any, err error) {
	h.value = value
	h.err = err
	close(h.done)
}

// Done is closed when the result is available.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Get waits for the result. A completed handle always reports the task's own
// outcome, even when ctx is already cancelled: cancellation never masks a
// failure that happened first.
func (h *Handle) Get(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.value, h.err
	default:
	}
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resolved returns an already-completed handle carrying value.
func Resolved(value any) *Handle {
	h := newHandle()
	h.complete(value, nil)
	return h
}

// Failed returns an already-completed handle carrying err.
func Failed(err error) *Handle {
	h := newHandle()
	h.complete(nil, err)
	return h
}

// Runner executes tasks decoupled from the calling goroutine.
type Runner interface {
	// Submit starts the task and returns a handle without blocking.
	Submit(ctx context.Context, task Task) *Handle
}

// GoRunner runs each task on its own goroutine. A panic inside the task
// completes the handle with a PanicError instead of crashing the process.
type GoRunner struct{}

func (GoRunner) Submit(ctx context.Context, task Task) *Handle {
	h := newHandle()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.complete(nil, &PanicError{Value: r, Stack: debug.Stack()})
			}
		}()
		v, err := task(ctx)
		h.complete(v, err)
	}()
	return h
}

// PanicError carries a recovered panic value from a task or handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during invocation: %v", e.Value)
}
