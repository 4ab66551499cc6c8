package scheduler_test

import (
	"fmt"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/periodic/pkg/future"
	"github.com/tupyy/periodic/pkg/pool"
	"github.com/tupyy/periodic/pkg/scheduler"
)

// Timing assertions are inherently non-deterministic: delays are impacted
// by OS scheduling. runNonDeterministic reruns the test body with a larger
// time unit on each attempt and fails only after sustained violation.
func runNonDeterministic(desc string, test func(timeUnit time.Duration) bool) {
	const maxAttempts = 4
	const baseTimeUnit = 50 * time.Millisecond

	for i := 1; i <= maxAttempts; i++ {
		timeUnit := time.Duration(i) * baseTimeUnit
		if test(timeUnit) {
			return
		}
		GinkgoWriter.Printf("%s: attempt %d with time unit %s failed, retrying\n", desc, i, timeUnit)
	}
	Fail(fmt.Sprintf("%s: timing assertions kept failing after %d attempts", desc, maxAttempts))
}

func countingTask(name string, startDelay, repeatDelay time.Duration, counter *atomic.Uint32, cb scheduler.Callback) scheduler.Task {
	return scheduler.Task{
		Name:        name,
		StartDelay:  startDelay,
		RepeatDelay: repeatDelay,
		Callback: func() *future.Future[scheduler.Result] {
			counter.Add(1)
			return cb()
		},
	}
}

var _ = Describe("Scheduler timing", func() {
	Describe("Initial delay", func() {
		It("should be respected", func() {
			runNonDeterministic("initial delay", func(timeUnit time.Duration) bool {
				p := pool.New(nbWorkers)
				s := scheduler.New(p)
				defer func() {
					s.Shutdown()
					p.Close()
				}()

				var counter atomic.Uint32
				err := s.AddTask(countingTask("delayed task", 2*timeUnit, 20*timeUnit, &counter, func() *future.Future[scheduler.Result] {
					return future.Ready(scheduler.ResultContinue)
				}))
				Expect(err).NotTo(HaveOccurred())

				// after 0.5x the initial delay no invocation has happened
				time.Sleep(timeUnit)
				if counter.Load() != 0 {
					return false
				}

				// after 1.5x the initial delay exactly one has
				time.Sleep(2 * timeUnit)
				if counter.Load() != 1 {
					return false
				}

				Expect(s.NumScheduledTasks()).To(Equal(1))
				return true
			})
		})
	})

	Describe("Repeat delay", func() {
		It("should be respected", func() {
			runNonDeterministic("repeat delay", func(timeUnit time.Duration) bool {
				p := pool.New(nbWorkers)
				s := scheduler.New(p)
				defer func() {
					s.Shutdown()
					p.Close()
				}()

				var counter atomic.Uint32
				err := s.AddTask(countingTask("repeating task", timeUnit, 2*timeUnit, &counter, func() *future.Future[scheduler.Result] {
					return future.Ready(scheduler.ResultContinue)
				}))
				Expect(err).NotTo(HaveOccurred())

				// over 6 units the timer fires at 1, 3 and 5
				time.Sleep(6 * timeUnit)
				if counter.Load() != 3 {
					return false
				}

				Expect(s.NumScheduledTasks()).To(Equal(1))
				return true
			})
		})

		It("should be relative to callback completion for blocking callbacks", func() {
			assertRepeatDelayIsRelativeToCompletion(func(timeUnit time.Duration, counter *atomic.Uint32) scheduler.Task {
				return countingTask("overrunning task", 0, 2*timeUnit, counter, func() *future.Future[scheduler.Result] {
					time.Sleep(3 * timeUnit)
					return future.Ready(scheduler.ResultContinue)
				})
			})
		})

		It("should be relative to callback completion for non-blocking callbacks", func() {
			assertRepeatDelayIsRelativeToCompletion(func(timeUnit time.Duration, counter *atomic.Uint32) scheduler.Task {
				return countingTask("overrunning task", 0, 2*timeUnit, counter, func() *future.Future[scheduler.Result] {
					pr, f := future.New[scheduler.Result]()
					time.AfterFunc(3*timeUnit, func() {
						_ = pr.Fulfill(scheduler.ResultContinue)
					})
					return f
				})
			})
		})
	})
})

// The callback takes 3 units while the repeat delay is 2 units. Measured
// from completion, invocations start at 0 and 5; measured (incorrectly)
// from invocation start they would pile up at 0, 2 and 4.
func assertRepeatDelayIsRelativeToCompletion(createTask func(timeUnit time.Duration, counter *atomic.Uint32) scheduler.Task) {
	runNonDeterministic("repeat relative to completion", func(timeUnit time.Duration) bool {
		p := pool.New(nbWorkers)
		s := scheduler.New(p)
		defer func() {
			s.Shutdown()
			p.Close()
		}()

		var counter atomic.Uint32
		Expect(s.AddTask(createTask(timeUnit, &counter))).To(Succeed())

		time.Sleep(6 * timeUnit)
		if counter.Load() != 2 {
			return false
		}

		Expect(s.NumScheduledTasks()).To(Equal(1))
		return true
	})
}
