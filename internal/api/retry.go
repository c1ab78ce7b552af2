package api

import (
	"context"
	"time"

	"auto-trader/internal/logger"
)

// RetryPolicy decides how often and how long to wait between attempts.
// Attempts are numbered from 1; Delay(n) is the wait after failed attempt n.
type RetryPolicy struct {
	MaxRetries int
	Delay      func(attempt int) time.Duration
	Retryable  func(err error) bool
}

// LinearBackoff waits step*attempt.
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// NoDelay retries immediately. Used by tests.
func NoDelay(int) time.Duration { return 0 }

// RetryServerErrors retries 5xx responses and connection failures only.
func RetryServerErrors(err error) bool {
	if IsTransport(err) {
		return true
	}
	return StatusCode(err) >= 500
}

// DefaultRetryPolicy is two retries, 200ms then 400ms, on 5xx and network errors.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		Delay:      LinearBackoff(200 * time.Millisecond),
		Retryable:  RetryServerErrors,
	}
}

// DoWithRetry builds a fresh request per attempt and retries per policy.
// The last error is returned unchanged so callers can classify it.
func (c *Client) DoWithRetry(ctx context.Context, build func() *Request, policy RetryPolicy) (*Response, int, error) {
	retryable := policy.Retryable
	if retryable == nil {
		retryable = RetryServerErrors
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= policy.MaxRetries+1; attempt++ {
		attempts = attempt
		resp, err := c.Do(build().WithContext(ctx))
		if err == nil {
			return resp, attempts, nil
		}
		lastErr = err
		if !retryable(err) || attempt > policy.MaxRetries {
			break
		}

		var wait time.Duration
		if policy.Delay != nil {
			wait = policy.Delay(attempt)
		}
		c.logWarn(ctx, "Request failed, retrying", "attempt", attempt, "error", err, "wait", wait)
		if err := Sleep(ctx, wait); err != nil {
			return nil, attempts, err
		}
	}
	if c.useLogging && attempts > 1 {
		logger.Warn(ctx, "All retry attempts failed", "attempts", attempts, "error", lastErr)
	}
	return nil, attempts, lastErr
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
