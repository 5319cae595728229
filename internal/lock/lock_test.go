package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stockroom/internal/lock"
)

func TestLocal_SerializesSameKey(t *testing.T) {
	l := lock.NewLocal()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock, err := l.Lock(ctx, "units", "orders")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestLocal_ContextCancelReleasesPartialAcquisition(t *testing.T) {
	l := lock.NewLocal()

	unlockOrders, err := l.Lock(context.Background(), "orders")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// "defects" sorts before "orders" and is acquired first, then the call
	// times out waiting for "orders".
	_, err = l.Lock(ctx, "orders", "defects")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlockDefects, err := l.Lock(context.Background(), "defects")
	require.NoError(t, err)
	unlockDefects()
	unlockOrders()
}

func TestLocal_DuplicateKeys(t *testing.T) {
	l := lock.NewLocal()

	unlock, err := l.Lock(context.Background(), "units", "units")
	require.NoError(t, err)
	unlock()
}
