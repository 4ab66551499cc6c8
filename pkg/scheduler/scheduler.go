package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	srvErrors "github.com/tupyy/periodic/pkg/errors"
)

// Config controls optional scheduler behavior.
type Config struct {
	// HistorySize bounds the in-memory run history. Zero selects the
	// default; a negative value disables recording.
	HistorySize int
}

// Scheduler multiplexes recurring tasks onto a shared worker pool. Each
// scheduler instance is independent; a process may host several over the
// same pool.
type Scheduler struct {
	dispatcher Dispatcher
	log        *zap.SugaredLogger

	mu        sync.Mutex
	cond      *sync.Cond
	slots     map[uuid.UUID]*slot
	accepting bool

	scheduled atomic.Int32
	executing atomic.Int32

	history *history
}

// New creates a scheduler over d with default configuration.
func New(d Dispatcher) *Scheduler {
	return NewWithConfig(d, Config{})
}

// NewWithConfig creates a scheduler over d.
func NewWithConfig(d Dispatcher, cfg Config) *Scheduler {
	s := &Scheduler{
		dispatcher: d,
		log:        zap.S().Named("scheduler"),
		slots:      map[uuid.UUID]*slot{},
		accepting:  true,
		history:    newHistory(cfg.HistorySize),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// AddTask schedules t for its first invocation after t.StartDelay.
//
// It fails synchronously with an InvalidTaskError for a malformed
// descriptor, with a SchedulerStoppedError once Shutdown has begun, and
// with a PoolClosedError when the pool refuses the timer; no partial state
// is left behind in any failure case.
func (s *Scheduler) AddTask(t Task) error {
	if err := t.validate(); err != nil {
		return err
	}

	sl := newSlot(s, t)
	s.mu.Lock()
	if !s.accepting {
		s.mu.Unlock()
		return srvErrors.NewSchedulerStoppedError()
	}
	s.slots[sl.id] = sl
	s.scheduled.Add(1)
	s.mu.Unlock()

	if err := sl.arm(t.StartDelay); err != nil {
		s.log.Warnw("failed to arm task timer", "task", t.Name, "error", err)
		sl.finish(stateRetired)
		return err
	}

	s.log.Infow("task scheduled",
		"task", t.Name,
		"slot", sl.id,
		"start_delay", t.StartDelay,
		"repeat_delay", t.RepeatDelay)
	return nil
}

// NumScheduledTasks returns the number of tasks that have not retired.
func (s *Scheduler) NumScheduledTasks() int {
	return int(s.scheduled.Load())
}

// NumExecutingTaskCallbacks returns the number of callbacks currently in
// flight, counted from callback entry to fulfillment of its future.
func (s *Scheduler) NumExecutingTaskCallbacks() int {
	return int(s.executing.Load())
}

// History returns a copy of the recent run records, oldest first.
func (s *Scheduler) History() []RunRecord {
	return s.history.snapshot()
}

// Shutdown stops the scheduler: no new tasks are accepted, waiting timers
// are cancelled without their callbacks running, and in-flight callbacks
// are allowed to resolve. It returns only once no task is scheduled and no
// callback is executing. Shutdown is idempotent.
//
// A callback that never fulfills its future prevents Shutdown from
// returning; the scheduler enforces no per-callback timeout.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	first := s.accepting
	s.accepting = false
	var slots []*slot
	if first {
		slots = make([]*slot, 0, len(s.slots))
		for _, sl := range s.slots {
			slots = append(slots, sl)
		}
	}
	s.mu.Unlock()

	if first {
		s.log.Infow("scheduler shutting down",
			"scheduled", s.NumScheduledTasks(),
			"executing", s.NumExecutingTaskCallbacks())
		for _, sl := range slots {
			sl.cancel()
		}
	}

	s.mu.Lock()
	for s.scheduled.Load() > 0 || s.executing.Load() > 0 {
		s.cond.Wait()
	}
	s.mu.Unlock()

	if first {
		s.log.Infow("scheduler shut down")
	}
}

// remove drops a slot that reached a terminal state. Called exactly once
// per slot, by the goroutine that performed the terminal transition.
func (s *Scheduler) remove(sl *slot) {
	s.mu.Lock()
	delete(s.slots, sl.id)
	s.scheduled.Add(-1)
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *Scheduler) noteExecutingDone() {
	s.executing.Add(-1)
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}
