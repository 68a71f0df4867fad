// Package export renders booking data into Excel workbooks for
// front-desk staff.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"gameroom/internal/models"
)

// BookingSource supplies the data exported into a workbook.
type BookingSource interface {
	ListBookings(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
}

type SegmentSource interface {
	ComputeRangeSegments(ctx context.Context, from, to time.Time) ([]models.Segment, error)
}

// ScheduleExporter writes a bookings-plus-schedule workbook to disk.
type ScheduleExporter struct {
	bookings BookingSource
	segments SegmentSource
	dir      string
	logger   *zerolog.Logger
}

func NewScheduleExporter(bookings BookingSource, segments SegmentSource, dir string, logger *zerolog.Logger) *ScheduleExporter {
	if dir == "" {
		dir = "exports"
	}
	return &ScheduleExporter{bookings: bookings, segments: segments, dir: dir, logger: logger}
}

// Export builds the workbook for [startDate, endDate] and returns the
// saved file path.
func (e *ScheduleExporter) Export(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	bookings, err := e.bookings.ListBookings(ctx, startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		return "", fmt.Errorf("list bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeBookingsSheet(f, bookings, startDate, endDate); err != nil {
		return "", err
	}
	if e.segments != nil {
		if err := e.writeScheduleSheet(ctx, f, startDate, endDate); err != nil {
			return "", err
		}
	}
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("schedule exported")
	return filePath, nil
}

var bookingHeaders = []string{"Booking ID", "Owner", "Device", "Start", "End", "Duration (h)", "Guests", "Status", "Passcode"}

func (e *ScheduleExporter) writeBookingsSheet(f *excelize.File, bookings []*models.Booking, startDate, endDate time.Time) error {
	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))
	lastCol, _ := excelize.CoordinatesToCellName(len(bookingHeaders), 1)
	_ = f.MergeCell(sheetName, "A1", lastCol)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 3
		guests := int64(1)
		if !b.IsPlayingAlone {
			guests = 1 + b.Fellows
		}
		values := []interface{}{
			b.ID,
			b.OwnerID,
			b.DeviceID,
			b.StartTime.Format("2006-01-02 15:04"),
			b.EndTime().Format("2006-01-02 15:04"),
			b.DurationHours,
			guests,
			b.Status,
			b.Passcode,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "I", 18)
	return nil
}

func (e *ScheduleExporter) writeScheduleSheet(ctx context.Context, f *excelize.File, startDate, endDate time.Time) error {
	const sheetName = "Schedule"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	segments, err := e.segments.ComputeRangeSegments(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("compute segments: %w", err)
	}

	headers := []string{"Date", "From", "To", "Availability"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, seg := range segments {
		row := i + 2
		values := []interface{}{
			seg.Start.Format("02.01.2006"),
			seg.Start.Format("15:04"),
			seg.End.Format("15:04"),
			seg.Classification,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "D", 16)
	return nil
}
