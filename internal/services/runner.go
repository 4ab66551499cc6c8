package services

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/tupyy/periodic/internal/config"
	"github.com/tupyy/periodic/internal/models"
	"github.com/tupyy/periodic/internal/store"
	"github.com/tupyy/periodic/pkg/future"
	"github.com/tupyy/periodic/pkg/scheduler"
)

// journalPruneKeep bounds the run journal; the journal-prune task trims to
// this many rows.
const journalPruneKeep = 1000

// Runner wires configured tasks onto a scheduler and journals every
// completed invocation.
type Runner struct {
	scheduler *scheduler.Scheduler
	store     *store.Store
}

func NewRunner(s *scheduler.Scheduler, st *store.Store) *Runner {
	return &Runner{scheduler: s, store: st}
}

// Start registers every configured task with the scheduler.
func (r *Runner) Start(ctx context.Context, tasks []config.Task) error {
	for _, t := range tasks {
		cb, err := r.buildCallback(ctx, t)
		if err != nil {
			return err
		}
		err = r.scheduler.AddTask(scheduler.Task{
			Name:        t.Name,
			StartDelay:  t.StartDelay,
			RepeatDelay: t.RepeatDelay,
			Callback:    r.journaled(t.Name, cb),
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task %q: %w", t.Name, err)
		}
	}
	return nil
}

func (r *Runner) buildCallback(ctx context.Context, t config.Task) (scheduler.Callback, error) {
	switch t.Kind {
	case "heartbeat":
		return func() *future.Future[scheduler.Result] {
			zap.S().Named("runner").Infow("heartbeat", "task", t.Name)
			return future.Ready(scheduler.ResultContinue)
		}, nil
	case "runtime-stats":
		return func() *future.Future[scheduler.Result] {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			zap.S().Named("runner").Infow("runtime stats",
				"task", t.Name,
				"goroutines", runtime.NumGoroutine(),
				"heap_alloc_mb", m.HeapAlloc/(1024*1024),
				"num_gc", m.NumGC)
			return future.Ready(scheduler.ResultContinue)
		}, nil
	case "journal-prune":
		// the journal may be briefly locked by a concurrent insert
		return scheduler.RetryingCallback(ctx, func(ctx context.Context) error {
			return r.store.History().Prune(ctx, journalPruneKeep)
		}, scheduler.RetryOptions{
			InitialInterval: 100 * time.Millisecond,
			MaxTries:        3,
		}), nil
	default:
		return nil, fmt.Errorf("unknown task kind %q for task %q", t.Kind, t.Name)
	}
}

// journaled wraps cb so that every invocation is recorded in the store
// after its future resolves, without altering the outcome the scheduler
// observes.
func (r *Runner) journaled(name string, cb scheduler.Callback) scheduler.Callback {
	return func() *future.Future[scheduler.Result] {
		started := time.Now()
		inner := cb()
		p, outer := future.New[scheduler.Result]()
		inner.Then(func(res scheduler.Result, err error) {
			r.journal(name, started, time.Since(started), res, err)
			if err != nil {
				_ = p.Fail(err)
				return
			}
			_ = p.Fulfill(res)
		})
		return outer
	}
}

func (r *Runner) journal(name string, started time.Time, d time.Duration, res scheduler.Result, err error) {
	run := models.TaskRun{
		Task:     name,
		Started:  started,
		Duration: d,
	}
	switch {
	case err != nil:
		run.Outcome = models.RunOutcomeError
		run.Error = err.Error()
	case res == scheduler.ResultTerminate:
		run.Outcome = models.RunOutcomeTerminate
	default:
		run.Outcome = models.RunOutcomeContinue
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.History().Insert(ctx, run); err != nil {
		zap.S().Named("runner").Warnw("failed to journal task run", "task", name, "error", err)
	}
}
