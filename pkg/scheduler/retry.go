package scheduler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tupyy/periodic/pkg/future"
)

// RetryOptions control the exponential backoff applied between failed
// attempts of an operation wrapped by RetryingCallback.
type RetryOptions struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	MaxTries        uint
}

// RetryingCallback adapts a fallible operation into a task callback that
// retries transient failures with exponential backoff. When op eventually
// succeeds the task continues; when retries are exhausted (or ctx is
// cancelled) the returned future fails and the slot retires.
//
// The callback blocks a pool worker for the duration of the retry loop.
// Use backoff.Permanent inside op to give up early on terminal failures.
func RetryingCallback(ctx context.Context, op func(context.Context) error, opts RetryOptions) Callback {
	return func() *future.Future[Result] {
		b := backoff.NewExponentialBackOff()
		if opts.InitialInterval > 0 {
			b.InitialInterval = opts.InitialInterval
		}
		if opts.MaxInterval > 0 {
			b.MaxInterval = opts.MaxInterval
		}

		retryOpts := []backoff.RetryOption{backoff.WithBackOff(b)}
		if opts.MaxElapsedTime > 0 {
			retryOpts = append(retryOpts, backoff.WithMaxElapsedTime(opts.MaxElapsedTime))
		}
		if opts.MaxTries > 0 {
			retryOpts = append(retryOpts, backoff.WithMaxTries(opts.MaxTries))
		}

		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			return struct{}{}, op(ctx)
		}, retryOpts...)
		if err != nil {
			return future.Failed[Result](err)
		}
		return future.Ready(ResultContinue)
	}
}
