package scheduler

import (
	"fmt"
	"time"

	srvErrors "github.com/tupyy/periodic/pkg/errors"
	"github.com/tupyy/periodic/pkg/future"
)

// Result is the outcome a task callback reports through its future.
type Result int

const (
	// ResultContinue re-arms the task after its repeat delay.
	ResultContinue Result = iota
	// ResultTerminate retires the task.
	ResultTerminate
)

func (r Result) String() string {
	switch r {
	case ResultContinue:
		return "continue"
	case ResultTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Callback produces the deferred outcome of one task invocation. A callback
// may block and return a ready future, or return immediately and fulfill
// the promise later from any goroutine. A failed future is treated as
// ResultTerminate.
type Callback func() *future.Future[Result]

// Task describes a recurring unit of work.
//
// StartDelay is measured from AddTask to the first invocation. RepeatDelay
// is measured from the completion of each invocation to the next one; zero
// means "as soon as possible", but the task still yields through the pool
// between invocations.
type Task struct {
	Name        string
	StartDelay  time.Duration
	RepeatDelay time.Duration
	Callback    Callback
}

func (t Task) validate() error {
	if t.Name == "" {
		return srvErrors.NewInvalidTaskError("name is empty")
	}
	if t.Callback == nil {
		return srvErrors.NewInvalidTaskError("callback is nil")
	}
	if t.StartDelay < 0 {
		return srvErrors.NewInvalidTaskError("start delay is negative")
	}
	if t.RepeatDelay < 0 {
		return srvErrors.NewInvalidTaskError("repeat delay is negative")
	}
	return nil
}

// Dispatcher is the minimal contract the scheduler requires from a worker
// pool: post work for immediate execution, and post work after a delay with
// a way to cancel the pending timer. pool.Pool satisfies it.
type Dispatcher interface {
	Post(fn func()) error
	PostAfter(delay time.Duration, fn func()) (cancel func(), err error)
}
