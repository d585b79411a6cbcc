// Package retry implements the bounded retry policy of the keep-alive service.
//
// Do drives a constant-delay backoff capped at Policy.MaxRetries retries:
//
//   - RETRY: the attempt failed and retries remain, try again after Delay
//   - EXHAUSTED: MaxRetries retries also failed, give up on the target
//
// A Tracker counts back-to-back failures for reporting; any success resets
// the count.
//
// Usage:
//
//	policy := retry.Policy{MaxRetries: 3, Delay: 30 * time.Second}
//	err := retry.Do(ctx, clock.Real(), policy, func(attempt int) error {
//	    return ping(ctx)
//	}, nil)
//	if errors.Is(err, retry.ErrExhausted) {
//	    // give up
//	}
package retry
