package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffWaitDuration(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, time.Second, false)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 100 * time.Millisecond},
		{attempt: 1, want: 200 * time.Millisecond},
		{attempt: 3, want: 800 * time.Millisecond},
		{attempt: 4, want: time.Second},
		{attempt: 60, want: time.Second},
	}
	for _, tt := range tests {
		if got := b.WaitDuration(tt.attempt); got != tt.want {
			t.Fatalf("attempt %d: expected %v, got %v", tt.attempt, tt.want, got)
		}
	}

	var nilBackoff *Backoff
	if got := nilBackoff.WaitDuration(3); got != 0 {
		t.Fatalf("nil backoff should not wait, got %v", got)
	}
}

func TestBackoffJitterStaysInRange(t *testing.T) {
	b := NewBackoff(10*time.Millisecond, 40*time.Millisecond, true)
	for i := 0; i < 100; i++ {
		if got := b.WaitDuration(5); got < 0 || got > 40*time.Millisecond {
			t.Fatalf("jittered wait out of range: %v", got)
		}
	}
}

func TestDo(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("retries until success", func(t *testing.T) {
		calls, retries := 0, 0
		err := Do(ctx, Policy{MaxRetries: 5}, func() error {
			calls++
			if calls < 3 {
				return boom
			}
			return nil
		}, func(error, int, time.Duration) { retries++ })
		if err != nil || calls != 3 || retries != 2 {
			t.Fatalf("unexpected result err=%v calls=%d retries=%d", err, calls, retries)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := Do(ctx, Policy{MaxRetries: 2}, func() error { calls++; return boom }, nil)
		if !errors.Is(err, boom) || calls != 3 {
			t.Fatalf("unexpected result err=%v calls=%d", err, calls)
		}
	})

	t.Run("non-retryable error stops immediately", func(t *testing.T) {
		calls := 0
		policy := Policy{MaxRetries: 5, ShouldRetry: func(error) bool { return false }}
		err := Do(ctx, policy, func() error { calls++; return boom }, nil)
		if !errors.Is(err, boom) || calls != 1 {
			t.Fatalf("unexpected result err=%v calls=%d", err, calls)
		}
	})

	t.Run("unbounded policy stops on cancel", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := Do(cctx, Policy{MaxRetries: -1}, func() error {
			calls++
			if calls == 4 {
				cancel()
			}
			return boom
		}, nil)
		if !errors.Is(err, context.Canceled) || calls != 4 {
			t.Fatalf("unexpected result err=%v calls=%d", err, calls)
		}
	})
}
