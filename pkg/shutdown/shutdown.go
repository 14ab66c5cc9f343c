package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// WithSignals returns a context cancelled on SIGINT or SIGTERM, or when
// parent ends.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Graceful waits for ctx to end, then runs stop with a fresh context bounded
// by timeout. Used as the tail of an errgroup member.
func Graceful(ctx context.Context, timeout time.Duration, stop func(context.Context) error) error {
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return stop(stopCtx)
}
