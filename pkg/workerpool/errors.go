package workerpool

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is returned when the pool cannot accept a submission.
	ErrRejected = errors.New("submission rejected")

	// ErrPanicked is returned by Handle.Wait when the task panicked.
	ErrPanicked = errors.New("task panicked")
)

// Rejection reasons.
const (
	ReasonShutdown  = "shutdown"
	ReasonQueueFull = "queue_full"
)

// RejectedError describes why a submission was rejected.
type RejectedError struct {
	Reason string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRejected, e.Reason)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// PanicError carries the value recovered from a panicking task.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPanicked, e.Value)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *PanicError) Unwrap() error {
	return ErrPanicked
}
