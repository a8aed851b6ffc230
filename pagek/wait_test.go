package pagek_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gitlab.com/pagek/pagek"
)

func fastWait(timeout time.Duration) *pagek.Wait {
	return &pagek.Wait{Timeout: timeout, PollInterval: 5 * time.Millisecond}
}

func TestWaitUntilImmediate(t *testing.T) {
	calls := 0
	err := fastWait(time.Second).Until(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestWaitUntilIgnoresNotFound(t *testing.T) {
	calls := 0
	err := fastWait(time.Second).Until(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		if calls < 3 {
			return false, &pagek.ElementNotFoundErr{Locator: pagek.ByID("x")}
		}
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestWaitUntilTimeout(t *testing.T) {
	start := time.Now()
	err := fastWait(50*time.Millisecond).Until(context.Background(), func(ctx context.Context) (bool, error) {
		return false, pagek.ErrElementNotVisible
	})
	require.True(t, errors.Is(err, pagek.ErrTimedOut), "got %v", err)
	require.Contains(t, err.Error(), "element not visible")
	require.True(t, time.Since(start) >= 50*time.Millisecond)
}

func TestWaitUntilStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	err := fastWait(time.Second).Until(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})
	require.Equal(t, boom, err)
	require.Equal(t, 1, calls)
}

func TestWaitUntilContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := fastWait(time.Second).Until(ctx, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	require.Equal(t, context.Canceled, err)
}
