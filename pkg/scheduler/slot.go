package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tupyy/periodic/pkg/future"
)

type slotState int

const (
	stateArmed slotState = iota
	stateDispatching
	stateRunning
	stateAwaitingRepeat
	stateRetired
	stateCancelled
)

func (s slotState) String() string {
	switch s {
	case stateArmed:
		return "armed"
	case stateDispatching:
		return "dispatching"
	case stateRunning:
		return "running"
	case stateAwaitingRepeat:
		return "awaiting-repeat"
	case stateRetired:
		return "retired"
	case stateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("slotState(%d)", int(s))
	}
}

// slot is the scheduler's bookkeeping for one live task. Its state
// transitions are serialized by mu; the only concurrent entry points are
// timer expiry (fire), future fulfillment (complete) and shutdown (cancel).
type slot struct {
	id   uuid.UUID
	task Task
	s    *Scheduler

	mu          sync.Mutex
	state       slotState
	cancelTimer func()
}

func newSlot(s *Scheduler, t Task) *slot {
	return &slot{
		id:    uuid.New(),
		task:  t,
		s:     s,
		state: stateArmed,
	}
}

func (sl *slot) postFire(delay time.Duration) (func(), error) {
	if delay <= 0 {
		return nil, sl.s.dispatcher.Post(sl.fire)
	}
	return sl.s.dispatcher.PostAfter(delay, sl.fire)
}

// arm registers the first timer. The slot may already have been cancelled
// by a concurrent shutdown, in which case arming is skipped.
func (sl *slot) arm(delay time.Duration) error {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.state != stateArmed {
		return nil
	}
	cancel, err := sl.postFire(delay)
	if err != nil {
		return err
	}
	sl.cancelTimer = cancel
	return nil
}

// fire runs on a pool worker when the slot's timer expires.
func (sl *slot) fire() {
	sl.mu.Lock()
	if sl.state != stateArmed {
		// cancelled between timer expiry and pickup
		sl.mu.Unlock()
		return
	}
	sl.state = stateDispatching
	sl.cancelTimer = nil
	sl.mu.Unlock()

	s := sl.s
	s.executing.Add(1)
	s.log.Debugw("task callback entered", "task", sl.task.Name, "slot", sl.id)

	started := time.Now()
	f, panicErr := sl.invoke()
	if f == nil {
		if panicErr == nil {
			panicErr = fmt.Errorf("task callback returned a nil future")
		}
		s.log.Errorw("task callback did not produce a future", "task", sl.task.Name, "slot", sl.id, "error", panicErr)
		s.noteExecutingDone()
		s.record(sl.task.Name, started, time.Since(started), ResultTerminate, panicErr)
		sl.finish(stateRetired)
		return
	}

	sl.mu.Lock()
	if sl.state == stateDispatching {
		sl.state = stateRunning
	}
	sl.mu.Unlock()

	f.Then(func(r Result, err error) {
		sl.complete(started, r, err)
	})
}

func (sl *slot) invoke() (f *future.Future[Result], panicErr error) {
	defer func() {
		if rec := recover(); rec != nil {
			f = nil
			panicErr = fmt.Errorf("task callback panicked: %v", rec)
		}
	}()
	return sl.task.Callback(), nil
}

// complete runs when the callback's future is fulfilled, on whichever
// goroutine fulfilled it.
func (sl *slot) complete(started time.Time, r Result, err error) {
	s := sl.s
	s.noteExecutingDone()

	if err != nil {
		s.log.Warnw("task callback failed", "task", sl.task.Name, "slot", sl.id, "error", err)
		r = ResultTerminate
	}
	s.record(sl.task.Name, started, time.Since(started), r, err)
	s.log.Debugw("task callback completed", "task", sl.task.Name, "slot", sl.id, "outcome", r.String())

	if r == ResultTerminate {
		s.log.Infow("task terminated", "task", sl.task.Name, "slot", sl.id)
		sl.finish(stateRetired)
		return
	}
	sl.rearm()
}

// rearm arms the repeat timer, measured from callback completion. The
// accepting check and the arming are atomic with respect to Shutdown, so a
// slot can never slip a fresh timer past the cancellation sweep.
func (sl *slot) rearm() {
	s := sl.s
	s.mu.Lock()
	if !s.accepting {
		s.mu.Unlock()
		sl.finish(stateCancelled)
		return
	}

	sl.mu.Lock()
	sl.state = stateAwaitingRepeat
	cancel, err := sl.postFire(sl.task.RepeatDelay)
	if err != nil {
		sl.state = stateRunning
		sl.mu.Unlock()
		s.mu.Unlock()
		s.log.Warnw("failed to arm repeat timer, retiring task", "task", sl.task.Name, "slot", sl.id, "error", err)
		sl.finish(stateRetired)
		return
	}
	sl.cancelTimer = cancel
	sl.state = stateArmed
	sl.mu.Unlock()
	s.mu.Unlock()
}

// cancel stops a waiting slot. Slots whose callback is already dispatching
// or running are left alone; their completion path observes that the
// scheduler stopped accepting and retires them.
func (sl *slot) cancel() {
	sl.mu.Lock()
	switch sl.state {
	case stateArmed, stateAwaitingRepeat:
		if sl.cancelTimer != nil {
			sl.cancelTimer()
		}
		sl.state = stateCancelled
		sl.cancelTimer = nil
		sl.mu.Unlock()
		sl.s.remove(sl)
	default:
		sl.mu.Unlock()
	}
}

// finish moves the slot to a terminal state. The first terminal transition
// wins; later calls are no-ops.
func (sl *slot) finish(st slotState) {
	sl.mu.Lock()
	if sl.state == stateRetired || sl.state == stateCancelled {
		sl.mu.Unlock()
		return
	}
	sl.state = st
	sl.cancelTimer = nil
	sl.mu.Unlock()
	sl.s.remove(sl)
}
