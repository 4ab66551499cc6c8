// Package pool implements a bounded worker pool with immediate and timed
// posts.
//
// The pool manages a fixed set of workers that execute posted functions
// concurrently. Work is submitted via Post (run as soon as a worker is
// free) or PostAfter (run after a delay).
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                             Pool                                    │
//	│                                                                     │
//	│  ┌──────────────┐      ┌──────────────┐      ┌──────────────┐       │
//	│  │   Worker 1   │      │   Worker 2   │      │   Worker N   │       │
//	│  └──────────────┘      └──────────────┘      └──────────────┘       │
//	│         ▲                     ▲                     ▲               │
//	│         │                     │                     │               │
//	│         └─────────────────────┼─────────────────────┘               │
//	│                               │                                     │
//	│                        ┌──────┴──────┐                              │
//	│                        │  dispatch() │                              │
//	│                        └──────┬──────┘                              │
//	│                               │                                     │
//	│  ┌────────────────────────────┴────────────────────────────┐        │
//	│  │                      Work Queue                         │        │
//	│  │  [fn1] [fn2] [fn3] ...                                  │        │
//	│  └─────────────────────────────────────────────────────────┘        │
//	│                    ▲                        ▲                       │
//	│                    │                        │ timer expiry          │
//	│                 Post(fn)            PostAfter(delay, fn)            │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Event Loop
//
// The pool runs an event loop handling three events:
//
//	for {
//	    select {
//	    case w := <-p.work:     // New work posted
//	        p.workQueue.Push(w)
//	        p.dispatch()
//
//	    case <-p.done:          // Worker completed
//	        p.workers.Push(...)
//	        p.dispatch()        // Try to assign queued work
//
//	    case <-p.closing:       // Shutdown requested
//	        p.wg.Wait()         // Wait for in-flight work
//	        return
//	    }
//	}
//
// dispatch() pairs available workers with pending work and is called both
// when new work arrives and when a worker completes, so work is assigned as
// soon as a worker is available.
//
// # Timed Posts
//
// PostAfter arms a monotonic timer; on expiry the function is posted like
// any other work item. The returned cancel function stops a pending timer
// and is a no-op once the timer has fired:
//
//	cancel, err := p.PostAfter(time.Second, fn)
//	...
//	cancel() // fn will not run, unless the timer already fired
//
// A timed post with zero delay is equivalent to Post. Ordering between
// posts is not guaranteed, not even from the same goroutine.
//
// # Panic Recovery
//
// Workers recover from panics in posted functions, log them, and return to
// the pool. A panic never crashes the pool.
//
// # Join and Close
//
// Join blocks until the work queue is empty and every worker is idle. Close
// performs a graceful, idempotent shutdown: it waits for in-flight work,
// drops work that never reached a worker, and makes subsequent posts fail
// with a PoolClosedError.
package pool
