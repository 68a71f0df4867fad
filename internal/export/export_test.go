package export

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gameroom/internal/models"
)

type stubBookings struct {
	bookings []*models.Booking
}

func (s *stubBookings) ListBookings(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	return s.bookings, nil
}

type stubSegments struct {
	segments []models.Segment
}

func (s *stubSegments) ComputeRangeSegments(ctx context.Context, from, to time.Time) ([]models.Segment, error) {
	return s.segments, nil
}

func TestExport(t *testing.T) {
	logger := zerolog.New(io.Discard)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	bookings := &stubBookings{bookings: []*models.Booking{
		{
			ID:            "b-1",
			OwnerID:       42,
			DeviceID:      1,
			StartTime:     day.Add(10 * time.Hour),
			DurationHours: 1.5,
			Fellows:       2,
			Status:        models.StatusUpcoming,
			Passcode:      "123456",
		},
	}}
	segments := &stubSegments{segments: []models.Segment{
		{Start: day.Add(8 * time.Hour), End: day.Add(10 * time.Hour), Classification: models.SegmentFree},
		{Start: day.Add(10 * time.Hour), End: day.Add(11*time.Hour + 30*time.Minute), Classification: models.SegmentPartial},
	}}

	dir := t.TempDir()
	exporter := NewScheduleExporter(bookings, segments, dir, &logger)

	path, err := exporter.Export(context.Background(), day, day)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "schedule_2025-06-01_to_2025-06-01.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Bookings", "Schedule"}, f.GetSheetList())

	id, err := f.GetCellValue("Bookings", "A3")
	require.NoError(t, err)
	assert.Equal(t, "b-1", id)

	class, err := f.GetCellValue("Schedule", "D3")
	require.NoError(t, err)
	assert.Equal(t, models.SegmentPartial, class)
}

func TestExportWithoutSegments(t *testing.T) {
	logger := zerolog.New(io.Discard)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	exporter := NewScheduleExporter(&stubBookings{}, nil, t.TempDir(), &logger)
	path, err := exporter.Export(context.Background(), day, day)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Bookings"}, f.GetSheetList())
}
