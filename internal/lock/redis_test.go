package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	client := newTestRedis(t)
	locker := NewRedisLocker(client, 5*time.Second)
	ctx := context.Background()

	release, err := locker.Lock(ctx, 1)
	require.NoError(t, err)

	// Held: a second acquire times out.
	shortCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(shortCtx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	// Released: acquirable again.
	release2, err := locker.Lock(ctx, 1)
	require.NoError(t, err)
	release2()
}

func TestRedisLockerPerDevice(t *testing.T) {
	client := newTestRedis(t)
	locker := NewRedisLocker(client, 5*time.Second)
	ctx := context.Background()

	release1, err := locker.Lock(ctx, 1)
	require.NoError(t, err)
	defer release1()

	release2, err := locker.Lock(ctx, 2)
	require.NoError(t, err)
	release2()
}

func TestRedisLockerWaitsForRelease(t *testing.T) {
	client := newTestRedis(t)
	locker := NewRedisLocker(client, 5*time.Second)
	ctx := context.Background()

	release, err := locker.Lock(ctx, 1)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		r, lockErr := locker.Lock(ctx, 1)
		assert.NoError(t, lockErr)
		if lockErr == nil {
			r()
		}
	}()

	time.Sleep(100 * time.Millisecond)
	release()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the lock after release")
	}
}
