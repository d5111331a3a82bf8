package util

import (
	"context"
	"errors"
	"testing"
)

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Retry(3, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if got != 42 || calls != 3 {
		t.Fatalf("Retry() = %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("permanent")
	calls := 0
	_, err := Retry(2, func() (int, error) {
		calls++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Retry() error = %v, want %v", err, wantErr)
	}
	if calls != 2 {
		t.Fatalf("Retry() made %d calls, want 2", calls)
	}
}

func TestRetry_ZeroTriesDefaultsToOne(t *testing.T) {
	calls := 0
	_, _ = Retry(0, func() (int, error) {
		calls++
		return 0, errors.New("x")
	})
	if calls != 1 {
		t.Fatalf("Retry() made %d calls, want 1", calls)
	}
}

func TestRetryWithContext_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryWithContext(ctx, 5, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("x")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RetryWithContext() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("RetryWithContext() made %d calls, want 0", calls)
	}
}

func TestRetryWithContext_DoesNotRetryDeadline(t *testing.T) {
	calls := 0
	_, err := RetryWithContext(context.Background(), 5, func(context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RetryWithContext() error = %v, want deadline exceeded", err)
	}
	if calls != 1 {
		t.Fatalf("RetryWithContext() made %d calls, want 1", calls)
	}
}
