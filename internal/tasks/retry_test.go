package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dashed/tbsync/internal/torbox"
)

func TestRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &torbox.APIError{StatusCode: 429}, true},
		{"server error", &torbox.APIError{StatusCode: 500}, true},
		{"bad gateway", &torbox.APIError{StatusCode: 502}, true},
		{"bad request", &torbox.APIError{StatusCode: 400}, false},
		{"auth error", &torbox.APIError{StatusCode: 403}, false},
		{"wrapped api error", fmt.Errorf("call failed: %w", &torbox.APIError{StatusCode: 503}), true},
		{"transport error", errors.New("connection refused"), true},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retriable(tt.err); got != tt.want {
				t.Errorf("Retriable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryPolicy_Do(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}

	t.Run("success on first attempt", func(t *testing.T) {
		calls := 0
		retries, err := policy.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return nil
		})
		if err != nil || retries != 0 || calls != 1 {
			t.Errorf("retries = %d, calls = %d, err = %v, want 0/1/nil", retries, calls, err)
		}
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		calls := 0
		retries, err := policy.Do(context.Background(), func(ctx context.Context) error {
			calls++
			if calls <= 2 {
				return &torbox.APIError{StatusCode: 500}
			}
			return nil
		})
		if err != nil || retries != 2 || calls != 3 {
			t.Errorf("retries = %d, calls = %d, err = %v, want 2/3/nil", retries, calls, err)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		wantErr := &torbox.APIError{StatusCode: 503}
		retries, err := policy.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("err = %v, want the final attempt's error", err)
		}
		if retries != 3 || calls != 4 {
			t.Errorf("retries = %d, calls = %d, want 3/4", retries, calls)
		}
	})

	t.Run("terminal error short-circuits", func(t *testing.T) {
		calls := 0
		retries, err := policy.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return &torbox.APIError{StatusCode: 400}
		})
		if err == nil || retries != 0 || calls != 1 {
			t.Errorf("retries = %d, calls = %d, err = %v, want 0/1/non-nil", retries, calls, err)
		}
	})

	t.Run("cancellation stops the backoff wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		slow := RetryPolicy{MaxRetries: 3, Backoff: time.Minute}
		_, err := slow.Do(ctx, func(ctx context.Context) error {
			return &torbox.APIError{StatusCode: 500}
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	t.Run("zero retries fails on first error", func(t *testing.T) {
		none := RetryPolicy{MaxRetries: 0, Backoff: time.Millisecond}
		calls := 0
		_, err := none.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return &torbox.APIError{StatusCode: 500}
		})
		if err == nil || calls != 1 {
			t.Errorf("calls = %d, err = %v, want 1/non-nil", calls, err)
		}
	})
}
