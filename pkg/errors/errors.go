package errors

import (
	"errors"
	"fmt"
)

// SchedulerStoppedError is returned by AddTask once shutdown has begun.
type SchedulerStoppedError struct{}

func NewSchedulerStoppedError() error {
	return &SchedulerStoppedError{}
}

func (e *SchedulerStoppedError) Error() string {
	return "scheduler is shutting down and cannot accept new tasks"
}

func IsSchedulerStopped(err error) bool {
	var target *SchedulerStoppedError
	return errors.As(err, &target)
}

// InvalidTaskError is returned when a task descriptor is malformed.
type InvalidTaskError struct {
	Reason string
}

func NewInvalidTaskError(reason string) error {
	return &InvalidTaskError{Reason: reason}
}

func (e *InvalidTaskError) Error() string {
	return fmt.Sprintf("invalid task: %s", e.Reason)
}

func IsInvalidTask(err error) bool {
	var target *InvalidTaskError
	return errors.As(err, &target)
}

// PoolClosedError is returned when work is posted to a closed pool.
type PoolClosedError struct{}

func NewPoolClosedError() error {
	return &PoolClosedError{}
}

func (e *PoolClosedError) Error() string {
	return "worker pool is closed"
}

func IsPoolClosed(err error) bool {
	var target *PoolClosedError
	return errors.As(err, &target)
}
