// Package scheduler drives recurring tasks on a shared worker pool.
//
// A task is a named unit of work with a start delay, a repeat delay and a
// callback producing a deferred outcome (future.Future[Result]). The
// scheduler multiplexes an unbounded set of such tasks onto a bounded pool,
// invokes each task serially with itself, and measures the repeat delay
// from the moment the previous invocation *completed*. A callback that
// overruns its nominal period never causes back-to-back invocations to
// queue up.
//
// # Task Lifecycle
//
//	           AddTask                 timer expiry
//	  (caller) ───────► ┌─────────┐ ───────────────► ┌──────────────┐
//	                    │  Armed  │                   │ Dispatching  │
//	                    └─────────┘ ◄──┐              └──────┬───────┘
//	                         │         │                     │ callback returns future
//	                Shutdown │         │ timer armed         ▼
//	                         ▼         │              ┌──────────────┐
//	                    ┌───────────┐  │              │   Running    │
//	                    │ Cancelled │  │              └──────┬───────┘
//	                    └───────────┘  │                     │ future fulfilled
//	                                   │      Continue       ▼
//	                    ┌──────────────┴───┐ ◄──────── (outcome?)
//	                    │  AwaitingRepeat  │                 │ Terminate / error
//	                    └──────────────────┘                 ▼
//	                                                  ┌──────────────┐
//	                                                  │   Retired    │
//	                                                  └──────────────┘
//
// A callback may block its worker and return a ready future, or return at
// once and fulfill the promise later from any goroutine. With a pool of N
// workers and blocking callbacks at most N callbacks execute concurrently;
// with non-blocking callbacks every scheduled task can be in flight at
// once.
//
// # Counters
//
// The scheduler publishes two atomic counters as its progress signal:
//
//   - NumScheduledTasks: tasks that have not retired
//   - NumExecutingTaskCallbacks: callbacks between entry and fulfillment
//
// External observers (tests, health checks) wait on these instead of
// holding task handles. At every quiescent point
// NumExecutingTaskCallbacks <= NumScheduledTasks.
//
// # Shutdown
//
// Shutdown flips the scheduler to non-accepting (first caller wins),
// cancels every waiting timer, lets in-flight callbacks resolve naturally,
// and returns once both counters are zero. Callbacks completing during
// shutdown retire instead of re-arming. Shutdown does not stop the pool;
// the owner may drive unrelated work on it afterwards.
//
// Individual tasks cannot be cancelled from outside: a task ends by
// returning ResultTerminate (or failing its future), or when the scheduler
// shuts down.
//
// # Errors
//
// Callback panics and failed futures are treated as ResultTerminate for
// that slot, logged and never escalated to the caller. A dispatcher that
// refuses a timer mid-run also retires the slot. AddTask surfaces
// InvalidTaskError, SchedulerStoppedError and PoolClosedError
// synchronously.
//
// # Usage
//
//	p := pool.New(4)
//	defer p.Close()
//
//	s := scheduler.New(p)
//	err := s.AddTask(scheduler.Task{
//	    Name:        "heartbeat",
//	    StartDelay:  0,
//	    RepeatDelay: 10 * time.Second,
//	    Callback: func() *future.Future[scheduler.Result] {
//	        zap.S().Info("alive")
//	        return future.Ready(scheduler.ResultContinue)
//	    },
//	})
//	...
//	s.Shutdown()
package scheduler
