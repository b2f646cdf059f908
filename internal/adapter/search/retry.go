package search

import (
	"context"
	"time"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MaxBackoff caps a single backoff delay.
const MaxBackoff = time.Minute

// Backoff returns the delay that precedes the given retry (1-based):
// initial, 2*initial, 4*initial, ... capped at MaxBackoff.
func Backoff(initial time.Duration, retry int) time.Duration {
	if retry < 1 || initial <= 0 {
		return 0
	}
	d := initial
	for i := 1; i < retry; i++ {
		if d >= MaxBackoff/2 {
			return MaxBackoff
		}
		d *= 2
	}
	return min(d, MaxBackoff)
}

// Retry runs attempt up to maxAttempts times. Terminal outcomes end the loop
// at once; retryable ones are retried after an exponential backoff. It
// returns the last observed outcome and the number of attempts made. If ctx
// is done while backing off, the loop stops with the last outcome.
func Retry(
	ctx context.Context,
	attempt func(ctx context.Context, n int) Outcome,
	maxAttempts int,
	initialBackoff time.Duration,
	sleep Sleeper,
) (Outcome, int) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if sleep == nil {
		sleep = SleepContext
	}

	var last Outcome
	n := 0
	for n < maxAttempts {
		if n > 0 {
			if err := sleep(ctx, Backoff(initialBackoff, n)); err != nil {
				break
			}
		}
		n++
		last = attempt(ctx, n)
		if last.Terminal() {
			break
		}
	}
	return last, n
}
