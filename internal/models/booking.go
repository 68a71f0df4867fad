package models

import (
	"math"
	"time"
)

// durationEpsilon tolerates float noise when checking the half-hour grid.
const durationEpsilon = 1e-9

type Booking struct {
	ID             string    `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	DeviceID       int64     `json:"device_id"`
	StartTime      time.Time `json:"start_time"`
	DurationHours  float64   `json:"duration_hours"`
	IsPlayingAlone bool      `json:"is_playing_alone"`
	Fellows        int64     `json:"fellows"`
	Status         string    `json:"status"`
	Passcode       string    `json:"passcode"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int64     `json:"version"`
}

// EndTime returns the exclusive end of the booking window.
func (b *Booking) EndTime() time.Time {
	return WindowEnd(b.StartTime, b.DurationHours)
}

// WindowEnd converts decimal hours to the exclusive end of [start, end).
func WindowEnd(start time.Time, durationHours float64) time.Time {
	return start.Add(time.Duration(durationHours * float64(time.Hour)))
}

// DeriveStatus computes the booking status at a given instant.
// Cancelled is sticky; the rest follows from the half-open window.
func DeriveStatus(b *Booking, now time.Time) string {
	if b.Status == StatusCancelled {
		return StatusCancelled
	}
	if now.Before(b.StartTime) {
		return StatusUpcoming
	}
	if now.Before(b.EndTime()) {
		return StatusOngoing
	}
	return StatusCompleted
}

// ValidDuration reports whether the duration lies in
// [MinDurationHours, MaxDurationHours] on the half-hour grid.
func ValidDuration(hours float64) bool {
	if hours < MinDurationHours-durationEpsilon || hours > MaxDurationHours+durationEpsilon {
		return false
	}
	steps := hours / DurationStepHours
	return math.Abs(steps-math.Round(steps)) <= durationEpsilon
}

// ValidStartHour reports whether a booking may start at t.
// The start hour must fall inside operating hours; the window itself
// may extend past closing.
func ValidStartHour(t time.Time) bool {
	h := t.Hour()
	return h >= OpeningHour && h < ClosingHour
}

// ValidOccupants checks the mutual constraint between the alone flag
// and the fellow count.
func ValidOccupants(isPlayingAlone bool, fellows int64) bool {
	if isPlayingAlone {
		return fellows == 0
	}
	return fellows >= 1
}

// DeviceAvailability reports remaining capacity of one device for a window.
type DeviceAvailability struct {
	DeviceID  int64  `json:"device_id"`
	Name      string `json:"name"`
	Total     int64  `json:"total"`
	Available int64  `json:"available"`
}

// Segment is one classified slice of an operating day.
type Segment struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Classification string    `json:"classification"`
}
