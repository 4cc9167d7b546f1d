package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingerus/monitor-core/internal/ratelimit"
)

func TestWait_AllowsUpToMaxWithoutBlocking(t *testing.T) {
	b := ratelimit.New(3, time.Hour)
	defer b.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Wait(ctx))
	}
}

func TestWait_BlocksOnceExhaustedUntilContextCancelled(t *testing.T) {
	b := ratelimit.New(1, time.Hour)
	defer b.Close()

	require.NoError(t, b.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := b.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWait_RefillsAfterPeriod(t *testing.T) {
	b := ratelimit.New(1, 30*time.Millisecond)
	defer b.Close()

	require.NoError(t, b.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, b.Wait(ctx), "token should be refilled after one period elapses")
}
