// Package lock serializes check-then-reserve sequences per device. A
// holder owns the device lock across the availability check and the
// write, which keeps the capacity invariant under concurrent requests.
package lock

import (
	"context"
	"sync"
)

// MemoryLocker keeps one lock per device in process memory. Suitable
// for a single-instance deployment and as the failover fallback.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[int64]chan struct{})}
}

func (l *MemoryLocker) Lock(ctx context.Context, deviceID int64) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[deviceID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[deviceID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
