package workerpool

import "context"

// Handle represents the eventual completion of one submitted task.
type Handle struct {
	task   Task
	ctx    context.Context
	cancel context.CancelFunc
	stop   func() bool

	done chan struct{}

	// written by the worker before done is closed
	err         error
	interrupted bool
}

func newHandle(parent, base context.Context, task Task) *Handle {
	ctx, cancel := context.WithCancel(parent)
	return &Handle{
		task:   task,
		ctx:    ctx,
		cancel: cancel,
		stop:   context.AfterFunc(base, cancel),
		done:   make(chan struct{}),
	}
}

func (h *Handle) finish(err error) {
	h.err = err
	h.stop()
	h.cancel()
	close(h.done)
}

// Done is closed when the task has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task finishes and returns its error, or returns
// ctx.Err() if ctx ends first. Waiting does not cancel the task.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel cancels this task's context only. A task that has not started yet
// still runs, with an already-cancelled context.
func (h *Handle) Cancel() {
	h.cancel()
}

// Interrupted reports whether the finished task stopped on context
// cancellation. It is false until Done is closed.
func (h *Handle) Interrupted() bool {
	select {
	case <-h.done:
		return h.interrupted
	default:
		return false
	}
}
