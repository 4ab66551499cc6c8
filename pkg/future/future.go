package future

import (
	"errors"
	"sync"
)

// ErrAlreadyFulfilled is returned when a promise is fulfilled or failed more
// than once. Fulfilling twice is a programming error on the producer side.
var ErrAlreadyFulfilled = errors.New("future: promise already fulfilled")

// cell is the shared state between a Promise and its Future.
type cell[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	fulfilled bool
	value     T
	err       error
	callbacks []func(T, error)
}

// Promise is the producer side of a deferred result. It can be fulfilled at
// most once, from any goroutine.
type Promise[T any] struct {
	c *cell[T]
}

// Future is the consumer side of a deferred result.
type Future[T any] struct {
	c *cell[T]
}

// New returns a fresh promise/future pair sharing one cell.
func New[T any]() (*Promise[T], *Future[T]) {
	c := &cell[T]{done: make(chan struct{})}
	return &Promise[T]{c: c}, &Future[T]{c: c}
}

// Ready returns a future already fulfilled with v.
func Ready[T any](v T) *Future[T] {
	p, f := New[T]()
	_ = p.Fulfill(v)
	return f
}

// Failed returns a future already fulfilled with err.
func Failed[T any](err error) *Future[T] {
	p, f := New[T]()
	_ = p.Fail(err)
	return f
}

// Fulfill sets the outcome to v. A second call to Fulfill or Fail returns
// ErrAlreadyFulfilled.
func (p *Promise[T]) Fulfill(v T) error {
	return p.c.complete(v, nil)
}

// Fail sets the outcome to err. Like Fulfill, only the first call wins.
func (p *Promise[T]) Fail(err error) error {
	var zero T
	return p.c.complete(zero, err)
}

func (c *cell[T]) complete(v T, err error) error {
	c.mu.Lock()
	if c.fulfilled {
		c.mu.Unlock()
		return ErrAlreadyFulfilled
	}
	c.fulfilled = true
	c.value = v
	c.err = err
	callbacks := c.callbacks
	c.callbacks = nil
	close(c.done)
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	return nil
}

// Await blocks until the future is fulfilled and returns the outcome.
func (f *Future[T]) Await() (T, error) {
	<-f.c.done
	// fields are stable once done is closed
	return f.c.value, f.c.err
}

// Done returns a channel closed on fulfillment.
func (f *Future[T]) Done() <-chan struct{} {
	return f.c.done
}

// Then registers fn to be invoked exactly once with the outcome. If the
// future is already fulfilled, fn runs synchronously on the calling
// goroutine; otherwise it runs on whichever goroutine fulfills the promise.
func (f *Future[T]) Then(fn func(T, error)) {
	c := f.c
	c.mu.Lock()
	if c.fulfilled {
		v, err := c.value, c.err
		c.mu.Unlock()
		fn(v, err)
		return
	}
	c.callbacks = append(c.callbacks, fn)
	c.mu.Unlock()
}
