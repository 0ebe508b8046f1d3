package munch

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrQueueTimeout    = errors.New("queue operation timed out")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrAlreadyRun      = errors.New("pipeline already run")
)

// Error is an unrecoverable failure of one pipeline component. It identifies the failing
// component, its identity (queue or stage name) and the operation, like
// "Enqueue failed in Queue:Reader-Munch1: queue operation timed out".
type Error struct {
	Component string
	Identity  string
	Op        string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed in %s:%s: %v", e.Op, e.Component, e.Identity, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(component, identity, op string, err error) error {
	return &Error{Component: component, Identity: identity, Op: op, Err: err}
}

// isCancellation reports whether err only echoes a cancelled run, as opposed to being the
// cause of it.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
