package domain

import (
	"context"
	"time"

	"gameroom/internal/models"
)

// BookingStore is the persistence contract the engine requires for
// bookings. The *Locked variants must re-check capacity atomically with
// the write (transaction or equivalent), so a passed availability check
// cannot be invalidated by a concurrent writer.
type BookingStore interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	CreateBookingLocked(ctx context.Context, booking *models.Booking) error
	UpdateBookingLocked(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id string, fromVersion int64, status string) error
	DeleteBooking(ctx context.Context, id string) error
	ListBookingsByRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	ListBookingsOverlapping(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	CountOverlapping(ctx context.Context, deviceID int64, start, end time.Time, excludeID string) (int, error)
	ListStale(ctx context.Context, now time.Time) ([]*models.Booking, error)
}

// DeviceStore provides read-only access to the device catalog.
// Devices are administered outside the engine.
type DeviceStore interface {
	GetDevice(ctx context.Context, id int64) (*models.Device, error)
	ListDevices(ctx context.Context) ([]*models.Device, error)
}

// DeviceLocker serializes check-then-reserve sequences per device.
// Lock blocks until the device lock is held or ctx expires; the
// returned function releases it.
type DeviceLocker interface {
	Lock(ctx context.Context, deviceID int64) (release func(), err error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Clock abstracts wall-clock reads so lifecycle transitions are
// deterministic under test.
type Clock interface {
	Now() time.Time
}
