// Package retry runs operations again with exponential backoff.
package retry

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Backoff computes exponential waits, optionally with full jitter.
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter bool

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBackoff(base, capDur time.Duration, jitter bool) *Backoff {
	if capDur > 0 && base > capDur {
		base = capDur
	}
	return &Backoff{
		Base:   base,
		Cap:    capDur,
		Jitter: jitter,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WaitDuration returns the wait before retry number attempt (0-based).
func (b *Backoff) WaitDuration(attempt int) time.Duration {
	if b == nil || b.Base <= 0 || attempt < 0 {
		return 0
	}

	wait := b.Base
	for i := 0; i < attempt; i++ {
		if wait > time.Duration(math.MaxInt64)/2 {
			wait = time.Duration(math.MaxInt64)
			break
		}
		wait *= 2
		if b.Cap > 0 && wait >= b.Cap {
			break
		}
	}
	if b.Cap > 0 && wait > b.Cap {
		wait = b.Cap
	}
	if !b.Jitter || wait <= 0 {
		return wait
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Duration(b.rnd.Int63n(int64(wait) + 1))
}

// Policy describes when and how often to retry. MaxRetries < 0 retries
// until ctx is done.
type Policy struct {
	MaxRetries  int
	Backoff     *Backoff
	ShouldRetry func(err error) bool
}

// Do runs op until it succeeds, the policy gives up or ctx is done. onRetry
// is called after each failed attempt (1-based) that will be retried.
func Do(ctx context.Context, policy Policy, op func() error, onRetry func(err error, attempt int, wait time.Duration)) error {
	var lastErr error
	for attempt := 0; policy.MaxRetries < 0 || attempt <= policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if policy.ShouldRetry != nil && !policy.ShouldRetry(lastErr) {
			return lastErr
		}
		if attempt == policy.MaxRetries {
			break
		}

		wait := policy.Backoff.WaitDuration(attempt)
		if onRetry != nil {
			onRetry(lastErr, attempt+1, wait)
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return lastErr
}
