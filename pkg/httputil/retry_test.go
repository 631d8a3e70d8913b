package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("status 503")

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("successFirstTry", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("Retry() = %v after %d calls; want nil after 1", err, calls)
		}
	})

	t.Run("nonRetryableStopsImmediately", func(t *testing.T) {
		calls := 0
		notFound := errors.New("not found")
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return notFound
		})
		if !errors.Is(err, notFound) {
			t.Errorf("Retry() = %v, want %v", err, notFound)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("retryableRecovers", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return Retryable(errTransient)
			}
			return nil
		})
		if err != nil {
			t.Errorf("Retry() = %v, want nil", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("exhaustsAttempts", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 2, time.Millisecond, func() error {
			calls++
			return Retryable(errTransient)
		})
		if !errors.Is(err, errTransient) {
			t.Errorf("Retry() = %v, want %v", err, errTransient)
		}
		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
	})

	t.Run("singleAttemptDisablesRetry", func(t *testing.T) {
		calls := 0
		_ = Policy{Attempts: 1}.Do(ctx, func() error {
			calls++
			return Retryable(errTransient)
		})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return Retryable(errTransient)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(errTransient)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("message not preserved: %q", err.Error())
	}
	if IsRetryable(errTransient) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}
