package pagek

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// revive:exported
const (
	DefaultWaitTimeout  = 10 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// ConditionFunc is called until it returns true, a non-ignorable error or the wait expires
type ConditionFunc func(ctx context.Context) (bool, error)

// Wait polls a condition until it holds or Timeout elapses
type Wait struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// NewWait with the default poll interval
func NewWait(timeout time.Duration) *Wait {
	return &Wait{Timeout: timeout, PollInterval: DefaultPollInterval}
}

// Until blocks the caller until cond returns true. Errors that only mean the element
// is not there yet (see IsIgnorable) are swallowed, anything else stops the wait.
// Returns an error matching ErrTimedOut when the ceiling is hit.
func (w *Wait) Until(ctx context.Context, cond ConditionFunc) error {
	interval := w.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	timer := time.NewTimer(w.Timeout)
	defer timer.Stop()

	var lastErr error
	for {
		ok, err := cond(ctx)
		if err != nil && !IsIgnorable(err) {
			return err
		}
		if err == nil && ok {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if lastErr != nil {
				return errors.Wrapf(ErrTimedOut, "after %s: %s", w.Timeout, lastErr)
			}
			return errors.Wrapf(ErrTimedOut, "after %s", w.Timeout)
		case <-ticker.C:
		}
	}
}
