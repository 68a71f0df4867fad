package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gameroom/internal/database"
	"gameroom/internal/domain"
	"gameroom/internal/events"
	"gameroom/internal/metrics"
	"gameroom/internal/models"
)

// BookingService runs the booking lifecycle: capacity-checked creation,
// edits, cancellation and deletion. All check-then-reserve sequences go
// through the device locker plus the store's in-transaction recount, so
// a device can never be overbooked even under concurrent writers.
type BookingService struct {
	bookings domain.BookingStore
	devices  domain.DeviceStore
	locker   domain.DeviceLocker
	bus      domain.EventPublisher
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingStore,
	devices domain.DeviceStore,
	locker domain.DeviceLocker,
	bus domain.EventPublisher,
	clock domain.Clock,
	logger *zerolog.Logger,
) *BookingService {
	if clock == nil {
		clock = SystemClock()
	}
	return &BookingService{
		bookings: bookings,
		devices:  devices,
		locker:   locker,
		bus:      bus,
		clock:    clock,
		logger:   logger,
	}
}

// NewBooking carries the fields a player submits to reserve a device.
type NewBooking struct {
	OwnerID        int64
	DeviceID       int64
	StartTime      time.Time
	DurationHours  float64
	IsPlayingAlone bool
	Fellows        int64
}

// BookingUpdate carries the full replacement state for an edit. Cancel
// set to true turns the edit into a cancellation and the remaining
// fields are ignored.
type BookingUpdate struct {
	DeviceID       int64
	StartTime      time.Time
	DurationHours  float64
	IsPlayingAlone bool
	Fellows        int64
	Cancel         bool
}

func (s *BookingService) validateWindow(start time.Time, durationHours float64, now time.Time) error {
	if !start.After(now) {
		return &ValidationError{Field: "start_time", Reason: "must be in the future"}
	}
	if !models.ValidStartHour(start) {
		return &ValidationError{
			Field:  "start_time",
			Reason: fmt.Sprintf("start hour must be between %02d:00 and %02d:00", models.OpeningHour, models.ClosingHour),
		}
	}
	if !models.ValidDuration(durationHours) {
		return &ValidationError{
			Field: "duration_hours",
			Reason: fmt.Sprintf("must be %.1f to %.1f hours in %.1f hour steps",
				models.MinDurationHours, models.MaxDurationHours, models.DurationStepHours),
		}
	}
	return nil
}

func validateOccupants(isPlayingAlone bool, fellows int64) error {
	if !models.ValidOccupants(isPlayingAlone, fellows) {
		if isPlayingAlone {
			return &ValidationError{Field: "fellows", Reason: "must be 0 when playing alone"}
		}
		return &ValidationError{Field: "fellows", Reason: "must be at least 1 when not playing alone"}
	}
	return nil
}

// CreateBooking validates the request, reserves capacity under the
// device lock and persists the booking with a fresh passcode.
func (s *BookingService) CreateBooking(ctx context.Context, req NewBooking) (*models.Booking, error) {
	now := s.clock.Now()
	if err := s.validateWindow(req.StartTime, req.DurationHours, now); err != nil {
		return nil, err
	}
	if err := validateOccupants(req.IsPlayingAlone, req.Fellows); err != nil {
		return nil, err
	}

	// Resolve the device first: an unknown device is a not-found error,
	// not a capacity conflict.
	device, err := s.devices.GetDevice(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if !device.Bookable() {
		metrics.IncBookingConflict("create")
		return nil, database.ErrNotAvailable
	}

	release, err := s.lockDevice(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	defer release()

	available, err := s.CheckAvailability(ctx, req.DeviceID, req.StartTime, req.DurationHours, "")
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if !available {
		metrics.IncBookingConflict("create")
		return nil, database.ErrNotAvailable
	}

	booking := &models.Booking{
		ID:             uuid.NewString(),
		OwnerID:        req.OwnerID,
		DeviceID:       req.DeviceID,
		StartTime:      req.StartTime,
		DurationHours:  req.DurationHours,
		IsPlayingAlone: req.IsPlayingAlone,
		Fellows:        req.Fellows,
		Status:         models.StatusUpcoming,
		Passcode:       NewPasscode(),
	}
	if err := s.bookings.CreateBookingLocked(ctx, booking); err != nil {
		if errors.Is(err, database.ErrNotAvailable) {
			metrics.IncBookingConflict("create")
		}
		return nil, err
	}

	metrics.IncBookingsCreated()
	s.logger.Info().
		Str("booking_id", booking.ID).
		Int64("device_id", booking.DeviceID).
		Int64("owner_id", booking.OwnerID).
		Time("start_time", booking.StartTime).
		Float64("duration_hours", booking.DurationHours).
		Msg("booking created")
	s.publish(events.EventBookingCreated, booking)

	return booking, nil
}

// UpdateBooking replaces the mutable fields of a booking, or cancels it
// when upd.Cancel is set. The capacity check excludes the booking's own
// slot only while it stays on the same device; moving to another device
// competes against that device's full occupancy.
func (s *BookingService) UpdateBooking(ctx context.Context, id string, upd BookingUpdate) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if models.DeriveStatus(booking, now) == models.StatusCancelled {
		return nil, ErrBookingCancelled
	}

	if upd.Cancel {
		return s.cancel(ctx, booking, now)
	}

	if err := s.validateWindow(upd.StartTime, upd.DurationHours, now); err != nil {
		return nil, err
	}
	if err := validateOccupants(upd.IsPlayingAlone, upd.Fellows); err != nil {
		return nil, err
	}

	device, err := s.devices.GetDevice(ctx, upd.DeviceID)
	if err != nil {
		return nil, err
	}
	if !device.Bookable() {
		metrics.IncBookingConflict("update")
		return nil, database.ErrNotAvailable
	}

	excludeID := ""
	if upd.DeviceID == booking.DeviceID {
		excludeID = booking.ID
	}

	release, err := s.lockDevice(ctx, upd.DeviceID)
	if err != nil {
		return nil, err
	}
	defer release()

	available, err := s.CheckAvailability(ctx, upd.DeviceID, upd.StartTime, upd.DurationHours, excludeID)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if !available {
		metrics.IncBookingConflict("update")
		return nil, database.ErrNotAvailable
	}

	updated := *booking
	updated.DeviceID = upd.DeviceID
	updated.StartTime = upd.StartTime
	updated.DurationHours = upd.DurationHours
	updated.IsPlayingAlone = upd.IsPlayingAlone
	updated.Fellows = upd.Fellows
	updated.Status = models.StatusUpcoming

	if err := s.bookings.UpdateBookingLocked(ctx, &updated); err != nil {
		if errors.Is(err, database.ErrNotAvailable) {
			metrics.IncBookingConflict("update")
		}
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", updated.ID).
		Int64("device_id", updated.DeviceID).
		Time("start_time", updated.StartTime).
		Msg("booking updated")
	s.publish(events.EventBookingUpdated, &updated)

	return &updated, nil
}

// CancelBooking marks a booking cancelled. Only bookings that have not
// started yet can be cancelled; the slot is freed immediately.
func (s *BookingService) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if booking.Status == models.StatusCancelled {
		return nil, ErrBookingCancelled
	}
	return s.cancel(ctx, booking, now)
}

func (s *BookingService) cancel(ctx context.Context, booking *models.Booking, now time.Time) (*models.Booking, error) {
	if booking.StartTime.Before(now) {
		return nil, ErrNotCancellable
	}
	if err := s.bookings.UpdateBookingStatus(ctx, booking.ID, booking.Version, models.StatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.StatusCancelled
	booking.Version++

	s.logger.Info().Str("booking_id", booking.ID).Msg("booking cancelled")
	s.publish(events.EventBookingCancelled, booking)

	return booking, nil
}

// DeleteBooking removes a booking outright regardless of its state.
// Administrative path; players go through DeleteOwnBooking.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("booking_id", id).Msg("booking deleted")
	s.publish(events.EventBookingDeleted, booking)
	return nil
}

// DeleteOwnBooking removes a booking on behalf of its owner.
func (s *BookingService) DeleteOwnBooking(ctx context.Context, id string, ownerID int64) error {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking.OwnerID != ownerID {
		return ErrNotOwner
	}
	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("booking_id", id).Int64("owner_id", ownerID).Msg("booking deleted by owner")
	s.publish(events.EventBookingDeleted, booking)
	return nil
}

// GetBooking fetches a booking with its status derived from the clock,
// so a stale stored status never leaks to callers.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.Status = models.DeriveStatus(booking, s.clock.Now())
	return booking, nil
}

// ListBookings returns bookings starting within [start, end) with
// derived statuses.
func (s *BookingService) ListBookings(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	bookings, err := s.bookings.ListBookingsByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for _, b := range bookings {
		b.Status = models.DeriveStatus(b, now)
	}
	return bookings, nil
}

func (s *BookingService) lockDevice(ctx context.Context, deviceID int64) (func(), error) {
	lockStart := time.Now()
	release, err := s.locker.Lock(ctx, deviceID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("device_id", deviceID).Msg("device lock not acquired")
		return nil, fmt.Errorf("lock device %d: %w", deviceID, ErrBusy)
	}
	metrics.ObserveLockWait(time.Since(lockStart).Seconds())
	return release, nil
}

func (s *BookingService) publish(eventType string, booking *models.Booking) {
	if s.bus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:     booking.ID,
		OwnerID:       booking.OwnerID,
		DeviceID:      booking.DeviceID,
		StartTime:     booking.StartTime,
		DurationHours: booking.DurationHours,
		Status:        booking.Status,
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}
