package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gameroom/internal/models"
)

var testDay = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestSchedule(bookings *MockBookingStore, devices *MockDeviceStore) *ScheduleService {
	return NewScheduleService(bookings, devices, testLogger())
}

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 1, hour, min, 0, 0, time.UTC)
}

func bookingAt(deviceID int64, start time.Time, hours float64) *models.Booking {
	return &models.Booking{
		ID:            start.Format("15:04") + "-booking",
		DeviceID:      deviceID,
		StartTime:     start,
		DurationHours: hours,
		Status:        models.StatusUpcoming,
	}
}

func TestComputeDaySegmentsEmptyDay(t *testing.T) {
	bookings := new(MockBookingStore)
	devices := new(MockDeviceStore)
	bookings.On("ListBookingsOverlapping", mock.Anything, at(8, 0), at(20, 0)).Return([]*models.Booking{}, nil)
	devices.On("ListDevices", mock.Anything).Return([]*models.Device{consoleDevice(1, 2)}, nil)

	segments, err := newTestSchedule(bookings, devices).ComputeDaySegments(context.Background(), testDay)
	require.NoError(t, err)

	require.Len(t, segments, 1)
	assert.Equal(t, at(8, 0), segments[0].Start)
	assert.Equal(t, at(20, 0), segments[0].End)
	assert.Equal(t, models.SegmentFree, segments[0].Classification)
}

func TestComputeDaySegmentsSingleBooking(t *testing.T) {
	bookings := new(MockBookingStore)
	devices := new(MockDeviceStore)
	bookings.On("ListBookingsOverlapping", mock.Anything, at(8, 0), at(20, 0)).Return([]*models.Booking{
		bookingAt(1, at(10, 0), 1.5),
	}, nil)
	devices.On("ListDevices", mock.Anything).Return([]*models.Device{consoleDevice(1, 2)}, nil)

	segments, err := newTestSchedule(bookings, devices).ComputeDaySegments(context.Background(), testDay)
	require.NoError(t, err)

	require.Len(t, segments, 3)
	assert.Equal(t, models.SegmentFree, segments[0].Classification)
	assert.Equal(t, at(10, 0), segments[1].Start)
	assert.Equal(t, at(11, 30), segments[1].End)
	assert.Equal(t, models.SegmentPartial, segments[1].Classification)
	assert.Equal(t, models.SegmentFree, segments[2].Classification)
	assert.Equal(t, at(20, 0), segments[2].End)
}

func TestComputeDaySegmentsFullyBooked(t *testing.T) {
	bookings := new(MockBookingStore)
	devices := new(MockDeviceStore)
	// Both PS5 units and the single Xbox are taken 10:00-11:00. The
	// broken device has zero quantity and must not prevent the fully
	// booked verdict.
	bookings.On("ListBookingsOverlapping", mock.Anything, at(8, 0), at(20, 0)).Return([]*models.Booking{
		bookingAt(1, at(10, 0), 1.0),
		bookingAt(1, at(10, 0), 1.0),
		bookingAt(2, at(10, 0), 1.0),
	}, nil)
	devices.On("ListDevices", mock.Anything).Return([]*models.Device{
		consoleDevice(1, 2),
		consoleDevice(2, 1),
		consoleDevice(3, 0),
	}, nil)

	segments, err := newTestSchedule(bookings, devices).ComputeDaySegments(context.Background(), testDay)
	require.NoError(t, err)

	require.Len(t, segments, 3)
	assert.Equal(t, models.SegmentFull, segments[1].Classification)
	assert.Equal(t, at(10, 0), segments[1].Start)
	assert.Equal(t, at(11, 0), segments[1].End)
}

func TestComputeDaySegmentsOverlappingBookings(t *testing.T) {
	bookings := new(MockBookingStore)
	devices := new(MockDeviceStore)
	// 10:00-12:00 and 11:00-13:00 on a quantity-2 device. Occupancy
	// changes at each endpoint but never reaches capacity of the
	// second device, so everything booked stays partial.
	bookings.On("ListBookingsOverlapping", mock.Anything, at(8, 0), at(20, 0)).Return([]*models.Booking{
		bookingAt(1, at(10, 0), 2.0),
		bookingAt(1, at(11, 0), 2.0),
	}, nil)
	devices.On("ListDevices", mock.Anything).Return([]*models.Device{
		consoleDevice(1, 2),
		consoleDevice(2, 1),
	}, nil)

	segments, err := newTestSchedule(bookings, devices).ComputeDaySegments(context.Background(), testDay)
	require.NoError(t, err)

	require.Len(t, segments, 5)
	assert.Equal(t, models.SegmentFree, segments[0].Classification)
	assert.Equal(t, models.SegmentPartial, segments[1].Classification)
	assert.Equal(t, models.SegmentPartial, segments[2].Classification)
	assert.Equal(t, models.SegmentPartial, segments[3].Classification)
	assert.Equal(t, models.SegmentFree, segments[4].Classification)
	assert.Equal(t, at(11, 0), segments[2].Start)
	assert.Equal(t, at(12, 0), segments[2].End)
}

func TestComputeDaySegmentsClipsPastClosing(t *testing.T) {
	bookings := new(MockBookingStore)
	devices := new(MockDeviceStore)
	// 19:30 + 2h runs to 21:30; the segment ends at closing.
	bookings.On("ListBookingsOverlapping", mock.Anything, at(8, 0), at(20, 0)).Return([]*models.Booking{
		bookingAt(1, at(19, 30), 2.0),
	}, nil)
	devices.On("ListDevices", mock.Anything).Return([]*models.Device{consoleDevice(1, 1)}, nil)

	segments, err := newTestSchedule(bookings, devices).ComputeDaySegments(context.Background(), testDay)
	require.NoError(t, err)

	require.Len(t, segments, 2)
	assert.Equal(t, at(19, 30), segments[1].Start)
	assert.Equal(t, at(20, 0), segments[1].End)
	assert.Equal(t, models.SegmentFull, segments[1].Classification)
}

func TestComputeRangeSegments(t *testing.T) {
	bookings := new(MockBookingStore)
	devices := new(MockDeviceStore)
	bookings.On("ListBookingsOverlapping", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Booking{}, nil)
	devices.On("ListDevices", mock.Anything).Return([]*models.Device{consoleDevice(1, 1)}, nil)
	svc := newTestSchedule(bookings, devices)

	segments, err := svc.ComputeRangeSegments(context.Background(), testDay, testDay.AddDate(0, 0, 2))
	require.NoError(t, err)
	// One free segment per operating day.
	assert.Len(t, segments, 3)

	_, err = svc.ComputeRangeSegments(context.Background(), testDay, testDay.AddDate(0, 0, -1))
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
