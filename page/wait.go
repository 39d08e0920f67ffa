package page

import (
	"context"
	"time"

	"gitlab.com/osfpages/pagek"
)

// Condition is checked on every poll. Returning an error aborts the wait.
type Condition func(ctx context.Context) (bool, error)

// Until checks cond immediately and then every poll interval until it holds,
// returning pagek.ErrTimedOut once timeout has fully elapsed. A last check is
// made at the deadline so a condition that becomes true on the final tick is
// not reported as a timeout.
func Until(ctx context.Context, timeout, poll time.Duration, cond Condition) error {
	if poll <= 0 {
		poll = pagek.DefaultPoll
	}

	ok, err := cond(ctx)
	if err != nil || ok {
		return err
	}
	if timeout <= 0 {
		return pagek.ErrTimedOut
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			ok, err := cond(ctx)
			if err != nil || ok {
				return err
			}
			return pagek.ErrTimedOut
		case <-ticker.C:
			ok, err := cond(ctx)
			if err != nil || ok {
				return err
			}
		}
	}
}
