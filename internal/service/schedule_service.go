package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"gameroom/internal/domain"
	"gameroom/internal/interval"
	"gameroom/internal/metrics"
	"gameroom/internal/models"
)

// ScheduleService slices operating days into classified free-time
// segments for calendar rendering.
type ScheduleService struct {
	bookings domain.BookingStore
	devices  domain.DeviceStore
	logger   *zerolog.Logger
}

func NewScheduleService(bookings domain.BookingStore, devices domain.DeviceStore, logger *zerolog.Logger) *ScheduleService {
	return &ScheduleService{bookings: bookings, devices: devices, logger: logger}
}

// OperatingWindow returns the [open, close) span of day's operating
// hours in day's location.
func OperatingWindow(day time.Time) interval.Span {
	y, m, d := day.Date()
	return interval.Span{
		Start: time.Date(y, m, d, models.OpeningHour, 0, 0, 0, day.Location()),
		End:   time.Date(y, m, d, models.ClosingHour, 0, 0, 0, day.Location()),
	}
}

// ComputeDaySegments partitions the operating window of day into
// contiguous segments of constant occupancy, each classified as free,
// partially booked or fully booked. Bookings running past closing are
// clipped to the window. Zero-quantity devices never count towards a
// fully booked verdict.
func (s *ScheduleService) ComputeDaySegments(ctx context.Context, day time.Time) ([]models.Segment, error) {
	bounds := OperatingWindow(day)

	bookings, err := s.bookings.ListBookingsOverlapping(ctx, bounds.Start, bounds.End)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	devices, err := s.devices.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	spans := make([]interval.Span, 0, len(bookings))
	for _, b := range bookings {
		spans = append(spans, interval.Span{Start: b.StartTime, End: b.EndTime()})
	}
	points := interval.ChangePoints(spans, bounds)

	segments := make([]models.Segment, 0, len(points))
	for i := 0; i+1 < len(points); i++ {
		segStart, segEnd := points[i], points[i+1]

		var active []*models.Booking
		for _, b := range bookings {
			if interval.Overlaps(b.StartTime, b.EndTime(), segStart, segEnd) {
				active = append(active, b)
			}
		}

		segments = append(segments, models.Segment{
			Start:          segStart,
			End:            segEnd,
			Classification: classifySegment(active, devices),
		})
	}

	metrics.AddSegmentsComputed(len(segments))
	return segments, nil
}

// ComputeRangeSegments concatenates day segments for every operating
// day from the day of `from` through the day of `to` inclusive.
func (s *ScheduleService) ComputeRangeSegments(ctx context.Context, from, to time.Time) ([]models.Segment, error) {
	if to.Before(from) {
		return nil, &ValidationError{Field: "to", Reason: "must not precede from"}
	}

	var all []models.Segment
	last := startOfDay(to)
	for day := startOfDay(from); !day.After(last); day = day.AddDate(0, 0, 1) {
		segments, err := s.ComputeDaySegments(ctx, day)
		if err != nil {
			return nil, err
		}
		all = append(all, segments...)
	}
	return all, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// classifySegment decides how busy one constant-occupancy slice is.
// Free means no active booking at all; fully booked means every
// bookable device is at capacity for the whole slice.
func classifySegment(active []*models.Booking, devices []*models.Device) string {
	if len(active) == 0 {
		return models.SegmentFree
	}

	usage := make(map[int64]int64, len(devices))
	for _, b := range active {
		usage[b.DeviceID]++
	}
	for _, d := range devices {
		if !d.Bookable() {
			continue
		}
		if usage[d.ID] < d.Quantity {
			return models.SegmentPartial
		}
	}
	return models.SegmentFull
}
