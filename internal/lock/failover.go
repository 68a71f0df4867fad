package lock

import (
	"context"
	"sync/atomic"
	"time"

	"gameroom/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryProbeInterval = time.Minute

// FailoverLocker prefers the primary (redis) locker and falls back to
// the in-process locker while the primary is unreachable, probing for
// recovery periodically. During a fallback window mutual exclusion is
// only instance-local; that matches single-writer deployments and
// degrades gracefully elsewhere.
type FailoverLocker struct {
	primary   domain.DeviceLocker
	fallback  domain.DeviceLocker
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed probe
}

func NewFailoverLocker(primary, fallback domain.DeviceLocker, logger *zerolog.Logger) *FailoverLocker {
	return &FailoverLocker{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (l *FailoverLocker) Lock(ctx context.Context, deviceID int64) (func(), error) {
	if !l.isDown.Load() {
		release, err := l.primary.Lock(ctx, deviceID)
		if err == nil || ctx.Err() != nil {
			return release, err
		}
		l.logger.Error().Err(err).Int64("device_id", deviceID).Msg("primary locker failed, falling back to memory")
		l.isDown.Store(true)
		l.lastCheck.Store(time.Now().UnixNano())
	}

	if l.isDown.Load() && time.Since(time.Unix(0, l.lastCheck.Load())) > recoveryProbeInterval {
		release, err := l.primary.Lock(ctx, deviceID)
		if err == nil {
			l.isDown.Store(false)
			return release, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		l.lastCheck.Store(time.Now().UnixNano())
	}

	return l.fallback.Lock(ctx, deviceID)
}
