package service

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed booking input. Always recoverable
// by the caller correcting the field; never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var (
	// ErrBookingCancelled rejects any mutation of a cancelled booking.
	ErrBookingCancelled = errors.New("booking is cancelled and can no longer be changed")

	// ErrNotCancellable rejects cancelling a booking whose start time
	// has already passed, ongoing ones included.
	ErrNotCancellable = errors.New("booking has already started and cannot be cancelled")

	// ErrNotOwner rejects a self-service delete by anyone but the owner.
	ErrNotOwner = errors.New("booking belongs to another player")

	// ErrBusy signals lock or store contention. Safe to retry with
	// backoff a bounded number of times.
	ErrBusy = errors.New("device is busy, try again")
)
