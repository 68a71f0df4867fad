package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"gameroom/internal/database"
	"gameroom/internal/domain"
	"gameroom/internal/metrics"
	"gameroom/internal/models"
)

// StatusReconciler writes time-derived booking statuses back to the
// store so reports and exports read current values without recomputing.
// Reads always derive from the clock; this write-back is a convenience,
// not a correctness requirement, so a lost race with a concurrent edit
// is simply skipped.
type StatusReconciler struct {
	bookings domain.BookingStore
	clock    domain.Clock
	interval time.Duration
	limiter  *rate.Limiter
	retry    RetryPolicy
	logger   *zerolog.Logger
}

func NewStatusReconciler(bookings domain.BookingStore, clock domain.Clock, interval time.Duration, rps float64, logger *zerolog.Logger) *StatusReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if rps <= 0 {
		rps = 50
	}
	return &StatusReconciler{
		bookings: bookings,
		clock:    clock,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		retry: RetryPolicy{
			MaxRetries:    3,
			InitialDelay:  500 * time.Millisecond,
			MaxDelay:      5 * time.Second,
			BackoffFactor: 2,
		},
		logger: logger,
	}
}

// Run reconciles on a fixed interval until ctx is cancelled.
func (r *StatusReconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("status reconciler started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("status reconciler stopped")
			return
		case <-ticker.C:
			if n, err := r.ReconcileOnce(ctx); err != nil {
				r.logger.Error().Err(err).Msg("status reconcile pass failed")
			} else if n > 0 {
				r.logger.Debug().Int("updated", n).Msg("status reconcile pass done")
			}
		}
	}
}

// ReconcileOnce advances every stale stored status one pass and returns
// how many rows were written.
func (r *StatusReconciler) ReconcileOnce(ctx context.Context) (int, error) {
	now := r.clock.Now()
	stale, err := r.bookings.ListStale(ctx, now)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, b := range stale {
		if err := r.limiter.Wait(ctx); err != nil {
			return updated, err
		}

		derived := models.DeriveStatus(b, now)
		if derived == b.Status {
			continue
		}

		booking := b
		err := r.retry.Do(ctx, func() error {
			err := r.bookings.UpdateBookingStatus(ctx, booking.ID, booking.Version, derived)
			if errors.Is(err, database.ErrConcurrentModification) || errors.Is(err, database.ErrBookingNotFound) {
				// Someone edited or removed the booking mid-pass; the
				// next pass sees the fresh row.
				return nil
			}
			return err
		})
		if err != nil {
			r.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("status write-back failed")
			continue
		}
		updated++
	}

	if updated > 0 {
		metrics.AddStatusReconciled(updated)
	}
	return updated, nil
}
