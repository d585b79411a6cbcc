package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/angeloszaimis/movieflix-keepalive/internal/clock"
)

// ErrExhausted is returned by Do when every allowed attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy allows MaxRetries further attempts after the first one, each
// Delay after the previous failure.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
}

func (p Policy) maxRetries() int {
	if p.MaxRetries < 0 {
		return 0
	}
	return p.MaxRetries
}

func (p Policy) backOff(ctx context.Context) backoff.BackOffContext {
	constant := backoff.NewConstantBackOff(p.Delay)
	return backoff.WithContext(backoff.WithMaxRetries(constant, uint64(p.maxRetries())), ctx)
}

// Do calls op until it succeeds, the policy runs out or ctx is cancelled.
// Retry delays are measured on c. notify, if set, runs before each retry is
// scheduled. Exhaustion is reported as ErrExhausted wrapping the last error;
// cancellation as ctx.Err().
func Do(ctx context.Context, c clock.Clock, p Policy, op func(attempt int) error, notify func(attempt int, err error, delay time.Duration)) error {
	attempt := 0
	operation := func() error {
		attempt++
		return op(attempt)
	}

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, delay time.Duration) {
			notify(attempt, err, delay)
		}
	}

	err := backoff.RetryNotifyWithTimer(operation, p.backOff(ctx), onRetry, &clockTimer{clock: c})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
}

// clockTimer arms backoff delays on a clock.Clock.
type clockTimer struct {
	clock clock.Clock
	timer clock.Timer
}

func (t *clockTimer) Start(d time.Duration) {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = t.clock.NewTimer(d)
}

func (t *clockTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *clockTimer) C() <-chan time.Time {
	return t.timer.C()
}

var _ backoff.Timer = (*clockTimer)(nil)
