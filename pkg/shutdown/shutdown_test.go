package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGraceful(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	boom := errors.New("boom")

	done := make(chan error, 1)
	go func() {
		done <- Graceful(ctx, time.Second, func(stopCtx context.Context) error {
			if _, ok := stopCtx.Deadline(); !ok {
				t.Errorf("expected stop context with deadline")
			}
			return boom
		})
	}()

	select {
	case <-done:
		t.Fatalf("stop ran before cancellation")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("expected stop error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Graceful did not return")
	}
}

func TestWithSignalsCancelsWithParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := WithSignals(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("child context not cancelled")
	}
}
