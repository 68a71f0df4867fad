package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"gameroom/internal/models"
)

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingStore) CreateBookingLocked(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingStore) UpdateBookingLocked(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingStore) UpdateBookingStatus(ctx context.Context, id string, fromVersion int64, status string) error {
	args := m.Called(ctx, id, fromVersion, status)
	return args.Error(0)
}

func (m *MockBookingStore) DeleteBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingStore) ListBookingsByRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, start, end)
	if b := args.Get(0); b != nil {
		return b.([]*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingStore) ListBookingsOverlapping(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, start, end)
	if b := args.Get(0); b != nil {
		return b.([]*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingStore) CountOverlapping(ctx context.Context, deviceID int64, start, end time.Time, excludeID string) (int, error) {
	args := m.Called(ctx, deviceID, start, end, excludeID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingStore) ListStale(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, now)
	if b := args.Get(0); b != nil {
		return b.([]*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDeviceStore struct {
	mock.Mock
}

func (m *MockDeviceStore) GetDevice(ctx context.Context, id int64) (*models.Device, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*models.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeviceStore) ListDevices(ctx context.Context) ([]*models.Device, error) {
	args := m.Called(ctx)
	if d := args.Get(0); d != nil {
		return d.([]*models.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeClock pins Now for deterministic lifecycle tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type noopLocker struct{}

func (noopLocker) Lock(ctx context.Context, deviceID int64) (func(), error) {
	return func() {}, nil
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}
