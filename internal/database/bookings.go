package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gameroom/internal/models"
)

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// countOverlapping counts non-cancelled bookings of a device whose
// half-open window intersects [start, end). excludeID removes one
// booking from the count so an in-place edit does not conflict with
// itself; pass "" to count everything.
func countOverlapping(ctx context.Context, q querier, deviceID int64, start, end time.Time, excludeID string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings
	          WHERE device_id = ? AND status != ?
	          AND start_time < ? AND end_time > ?
	          AND id != ?`

	var count int
	err := q.QueryRowContext(ctx, query, deviceID, models.StatusCancelled,
		fmtTime(end), fmtTime(start), excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

func deviceQuantity(ctx context.Context, q querier, deviceID int64) (int64, error) {
	var quantity int64
	err := q.QueryRowContext(ctx, `SELECT quantity FROM devices WHERE id = ?`, deviceID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrDeviceNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get device quantity: %w", err)
	}
	return quantity, nil
}

func (db *DB) CountOverlapping(ctx context.Context, deviceID int64, start, end time.Time, excludeID string) (int, error) {
	return countOverlapping(ctx, db.DB, deviceID, start, end, excludeID)
}

// CreateBookingLocked inserts a booking after re-checking capacity
// inside the same transaction, so two racing creates cannot both pass
// the check and overbook the device.
func (db *DB) CreateBookingLocked(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	quantity, err := deviceQuantity(ctx, tx, booking.DeviceID)
	if err != nil {
		return err
	}

	booked, err := countOverlapping(ctx, tx, booking.DeviceID, booking.StartTime, booking.EndTime(), "")
	if err != nil {
		return err
	}
	if int64(booked) >= quantity {
		return ErrNotAvailable
	}

	query := `INSERT INTO bookings (
	              id, owner_id, device_id, start_time, end_time, duration_hours,
	              is_playing_alone, fellows, status, passcode, created_at, updated_at, version
	          ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err = tx.ExecContext(ctx, query,
		booking.ID,
		booking.OwnerID,
		booking.DeviceID,
		fmtTime(booking.StartTime),
		fmtTime(booking.EndTime()),
		booking.DurationHours,
		booking.IsPlayingAlone,
		booking.Fellows,
		booking.Status,
		booking.Passcode,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

// UpdateBookingLocked rewrites the booking window, device and occupant
// fields under the same in-transaction capacity re-check as create. The
// count excludes the booking itself so it is not held against its own
// new window. The write is version-checked.
func (db *DB) UpdateBookingLocked(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	quantity, err := deviceQuantity(ctx, tx, booking.DeviceID)
	if err != nil {
		return err
	}

	booked, err := countOverlapping(ctx, tx, booking.DeviceID, booking.StartTime, booking.EndTime(), booking.ID)
	if err != nil {
		return err
	}
	if int64(booked) >= quantity {
		return ErrNotAvailable
	}

	query := `UPDATE bookings SET
	              device_id = ?, start_time = ?, end_time = ?, duration_hours = ?,
	              is_playing_alone = ?, fellows = ?, status = ?,
	              version = version + 1, updated_at = ?
	          WHERE id = ? AND version = ?`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		booking.DeviceID,
		fmtTime(booking.StartTime),
		fmtTime(booking.EndTime()),
		booking.DurationHours,
		booking.IsPlayingAlone,
		booking.Fellows,
		booking.Status,
		now,
		booking.ID,
		booking.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking in tx: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking update: %w", err)
	}

	booking.UpdatedAt = now
	booking.Version++
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT id, owner_id, device_id, start_time, end_time, duration_hours,
	                 is_playing_alone, fellows, status, passcode, created_at, updated_at, version
	          FROM bookings WHERE id = ?`

	b, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// UpdateBookingStatus performs a version-checked status write. Used for
// cancellation and by the status reconciler.
func (db *DB) UpdateBookingStatus(ctx context.Context, id string, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ListBookingsByRange returns bookings of every status whose start
// falls in [start, end).
func (db *DB) ListBookingsByRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT id, owner_id, device_id, start_time, end_time, duration_hours,
	                 is_playing_alone, fellows, status, passcode, created_at, updated_at, version
	          FROM bookings WHERE start_time >= ? AND start_time < ? ORDER BY start_time, created_at`

	return db.queryBookings(ctx, query, fmtTime(start), fmtTime(end))
}

// ListBookingsOverlapping returns non-cancelled bookings whose window
// intersects [start, end).
func (db *DB) ListBookingsOverlapping(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT id, owner_id, device_id, start_time, end_time, duration_hours,
	                 is_playing_alone, fellows, status, passcode, created_at, updated_at, version
	          FROM bookings WHERE status != ? AND start_time < ? AND end_time > ?
	          ORDER BY start_time`

	return db.queryBookings(ctx, query, models.StatusCancelled, fmtTime(end), fmtTime(start))
}

// ListStale returns bookings whose stored status lags the wall clock:
// upcoming ones already started and ongoing ones already over.
// Cancelled rows are never reported.
func (db *DB) ListStale(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	query := `SELECT id, owner_id, device_id, start_time, end_time, duration_hours,
	                 is_playing_alone, fellows, status, passcode, created_at, updated_at, version
	          FROM bookings
	          WHERE (status = ? AND start_time <= ?) OR (status = ? AND end_time <= ?)
	          ORDER BY start_time`

	ts := fmtTime(now)
	return db.queryBookings(ctx, query, models.StatusUpcoming, ts, models.StatusOngoing, ts)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var startStr, endStr string
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.DeviceID, &startStr, &endStr, &b.DurationHours,
		&b.IsPlayingAlone, &b.Fellows, &b.Status, &b.Passcode,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	if b.StartTime, err = parseStoredTime(startStr); err != nil {
		return nil, err
	}
	// end_time is derived from start + duration; stored only for SQL
	// range predicates, so it is not scanned back into the model.
	return b, nil
}
