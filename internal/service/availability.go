package service

import (
	"context"
	"errors"
	"time"

	"gameroom/internal/database"
	"gameroom/internal/metrics"
	"gameroom/internal/models"
)

// CheckAvailability reports whether the device has spare capacity for
// the whole window [start, start+durationHours). An unknown device or a
// device with zero quantity is simply unavailable, not an error.
// excludeBookingID removes one booking from the occupancy count so an
// edit does not collide with its own current slot; pass "" otherwise.
func (s *BookingService) CheckAvailability(ctx context.Context, deviceID int64, start time.Time, durationHours float64, excludeBookingID string) (bool, error) {
	metrics.IncAvailabilityChecks()

	device, err := s.devices.GetDevice(ctx, deviceID)
	if errors.Is(err, database.ErrDeviceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !device.Bookable() {
		return false, nil
	}

	count, err := s.bookings.CountOverlapping(ctx, deviceID, start, models.WindowEnd(start, durationHours), excludeBookingID)
	if err != nil {
		return false, err
	}
	return int64(count) < device.Quantity, nil
}

// ListDeviceAvailabilities reports remaining capacity of every device
// for the window. Built for display surfaces, it never fails: any store
// fault degrades to an empty list and is logged.
func (s *BookingService) ListDeviceAvailabilities(ctx context.Context, start time.Time, durationHours float64) []models.DeviceAvailability {
	metrics.IncAvailabilityChecks()

	devices, err := s.devices.ListDevices(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("device list unavailable")
		return []models.DeviceAvailability{}
	}

	end := models.WindowEnd(start, durationHours)
	out := make([]models.DeviceAvailability, 0, len(devices))
	for _, d := range devices {
		count, err := s.bookings.CountOverlapping(ctx, d.ID, start, end, "")
		if err != nil {
			s.logger.Warn().Err(err).Int64("device_id", d.ID).Msg("occupancy count unavailable")
			return []models.DeviceAvailability{}
		}
		available := d.Quantity - int64(count)
		if available < 0 {
			available = 0
		}
		out = append(out, models.DeviceAvailability{
			DeviceID:  d.ID,
			Name:      d.Name,
			Total:     d.Quantity,
			Available: available,
		})
	}
	return out
}
