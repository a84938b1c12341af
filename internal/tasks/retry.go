package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/dashed/tbsync/internal/torbox"
)

// RetryPolicy bounds the attempt loop for one remote call.
//
// A call is tried once and then retried up to MaxRetries times on retriable
// failures, sleeping Backoff before the first retry and doubling before each
// further one.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// DefaultRetryPolicy returns the policy used for all remote calls: three
// retries at 5s, 10s, 20s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Backoff: 5 * time.Second}
}

// Retriable reports whether err is worth another attempt.
//
// API errors classify themselves (rate limiting and 5xx retry, other
// rejections are terminal). Context cancellation is never retried. Anything
// else is a transport-level failure and gets another attempt.
func Retriable(err error) bool {
	var apiErr *torbox.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retriable()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Do runs fn under the policy and returns the number of retries performed
// alongside fn's final error.
//
// The attempt counter is loop-local: retry state never leaves this function.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) (int, error) {
	delay := p.Backoff

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return attempt, nil
		}
		if attempt >= p.MaxRetries || !Retriable(err) {
			return attempt, err
		}

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
