package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	srvErrors "github.com/tupyy/periodic/pkg/errors"
)

type queue[T any] []T

func (wq *queue[T]) Len() int { return len(*wq) }

func (wq *queue[T]) Pop() T {
	old := *wq
	x := old[0]
	*wq = old[1:]
	return x
}

func (wq *queue[T]) Push(t T) {
	*wq = append(*wq, t)
}

type workItem struct {
	fn func()
}

type worker struct {
	p *Pool
}

func (w worker) Work(item workItem) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Named("pool").Errorw("work item panicked", "error", fmt.Sprintf("%v", rec))
		}
		w.p.done <- struct{}{}
		w.p.wg.Done()
		w.p.decOutstanding()
	}()

	item.fn()
}

// Pool is a bounded worker pool. Work is executed on a fixed number of
// workers; excess work queues until a worker frees up. Two posts from the
// same goroutine are not guaranteed to run in submission order.
type Pool struct {
	workers    *queue[worker]
	workQueue  *queue[workItem]
	closing    chan any
	done       chan any
	stopped    chan any
	work       chan workItem
	mainCtx    context.Context
	mainCancel context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once

	mu          sync.Mutex
	idle        *sync.Cond
	outstanding int
}

func New(nbWorkers int) *Pool {
	done := make(chan any, nbWorkers)
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		workers:    &queue[worker]{},
		workQueue:  &queue[workItem]{},
		closing:    make(chan any),
		done:       done,
		stopped:    make(chan any),
		work:       make(chan workItem),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	p.idle = sync.NewCond(&p.mu)
	for range nbWorkers {
		p.workers.Push(worker{p: p})
	}
	go p.run()
	return p
}

// Post enqueues fn for execution on some worker. It returns immediately;
// a PoolClosedError is returned once Close has been called.
func (p *Pool) Post(fn func()) error {
	p.incOutstanding()
	select {
	case <-p.mainCtx.Done():
		p.decOutstanding()
		return srvErrors.NewPoolClosedError()
	case p.work <- workItem{fn: fn}:
		return nil
	}
}

// PostAfter schedules fn to be posted after delay. A zero delay is
// equivalent to Post. The returned cancel function stops the pending timed
// post; it is idempotent and a no-op if the timer has already fired.
func (p *Pool) PostAfter(delay time.Duration, fn func()) (func(), error) {
	select {
	case <-p.mainCtx.Done():
		return nil, srvErrors.NewPoolClosedError()
	default:
	}

	t := time.AfterFunc(delay, func() {
		if err := p.Post(fn); err != nil {
			zap.S().Named("pool").Debugw("timed post dropped", "error", err)
		}
	})
	return func() { t.Stop() }, nil
}

// Join blocks until no work items remain queued and all workers are idle.
// Pending timed posts that have not fired yet are not waited on.
func (p *Pool) Join() {
	p.mu.Lock()
	for p.outstanding > 0 {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Close shuts the pool down: no further posts are accepted, in-flight work
// is waited on and queued work that never reached a worker is dropped.
// Close is idempotent.
func (p *Pool) Close() {
	p.once.Do(func() {
		p.mainCancel()
		p.closing <- struct{}{}
		<-p.stopped
	})
}

func (p *Pool) run() {
	defer close(p.stopped)
	for {
		select {
		case w := <-p.work:
			p.workQueue.Push(w)
			p.dispatch()
		case <-p.done:
			p.workers.Push(worker{p: p})
			p.dispatch()
		case <-p.closing:
			p.wg.Wait()
			// drop work that never reached a worker
			for p.workQueue.Len() > 0 {
				p.workQueue.Pop()
				p.decOutstanding()
			}
			return
		}
	}
}

// dispatch drains the workQueue as much as possible
// based on available workers
func (p *Pool) dispatch() {
	for p.workers.Len() > 0 && p.workQueue.Len() > 0 {
		item := p.workQueue.Pop()
		w := p.workers.Pop()
		p.wg.Add(1)
		go w.Work(item)
	}
}

func (p *Pool) incOutstanding() {
	p.mu.Lock()
	p.outstanding++
	p.mu.Unlock()
}

func (p *Pool) decOutstanding() {
	p.mu.Lock()
	p.outstanding--
	if p.outstanding == 0 {
		p.idle.Broadcast()
	}
	p.mu.Unlock()
}
