package subsonic

import (
	"context"
	"fmt"
	"time"
)

// retryPolicy reissues failed calls with exponential backoff. Only errors
// the classifier marks Retry consume an attempt; FallbackAuth reissues
// immediately without penalty, and Fatal/SkipItem stop the loop at once.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleep       func(ctx context.Context, d time.Duration) bool // injectable for tests
}

func newRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) *retryPolicy {
	return &retryPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		sleep:       sleepCtx,
	}
}

// attempt is one network call. It returns the classified protocol error
// and its disposition; both are nil/zero on success.
type attempt func(ctx context.Context) (*Error, Disposition)

// do runs op under the retry policy.
//
// Generic server errors (wire code 0) are retried at most once regardless
// of the remaining budget. After the budget is exhausted the last
// protocol error is returned wrapped as a terminal failure; a partially
// successful result is never surfaced.
func (r *retryPolicy) do(ctx context.Context, op attempt) error {
	var lastErr *Error
	genericRetries := 0

	for tries := 0; tries < r.maxAttempts; tries++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		perr, disp := op(ctx)
		if perr == nil {
			return nil
		}
		lastErr = perr

		switch disp {
		case Fatal, SkipItem:
			return perr
		case FallbackAuth:
			// Auth mode switched; reissue without consuming an attempt.
			tries--
			continue
		case Retry:
			if perr.Kind == KindServerGeneric {
				if genericRetries >= 1 {
					return fmt.Errorf("subsonic: retries exhausted: %w", perr)
				}
				genericRetries++
			}
			if tries == r.maxAttempts-1 {
				break
			}
			if !r.sleep(ctx, r.delay(tries)) {
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("subsonic: retries exhausted after %d attempts: %w", r.maxAttempts, lastErr)
}

// delay computes the backoff before the given zero-based attempt is
// reissued: min(baseDelay * 2^attempt, maxDelay).
func (r *retryPolicy) delay(attempt int) time.Duration {
	d := r.baseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= r.maxDelay {
			return r.maxDelay
		}
	}
	if d > r.maxDelay {
		return r.maxDelay
	}
	return d
}

// sleepCtx waits for d or until ctx is cancelled. Returns true if the
// full duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
