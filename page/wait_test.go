package page_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/osfpages/page"
	"gitlab.com/osfpages/pagek"
)

func TestUntilImmediate(t *testing.T) {
	var calls int32
	start := time.Now()
	err := page.Until(context.Background(), time.Second, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestUntilTimesOutAfterFullTimeout(t *testing.T) {
	timeout := 150 * time.Millisecond
	start := time.Now()
	err := page.Until(context.Background(), timeout, 20*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	elapsed := time.Since(start)
	assert.ErrorIs(t, err, pagek.ErrTimedOut)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+200*time.Millisecond)
}

func TestUntilBecomesTrue(t *testing.T) {
	ready := time.Now().Add(60 * time.Millisecond)
	err := page.Until(context.Background(), time.Second, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
		return time.Now().After(ready), nil
	})
	assert.NoError(t, err)
}

func TestUntilConditionErrorAborts(t *testing.T) {
	fault := errors.New("websocket closed")
	start := time.Now()
	err := page.Until(context.Background(), time.Second, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, fault
	})
	assert.Equal(t, fault, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestUntilContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := page.Until(ctx, 5*time.Second, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUntilZeroTimeoutChecksOnce(t *testing.T) {
	var calls int32
	err := page.Until(context.Background(), 0, 0, func(ctx context.Context) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return false, nil
	})
	assert.ErrorIs(t, err, pagek.ErrTimedOut)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
