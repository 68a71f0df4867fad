package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gameroom/internal/models"
)

// SeedDevices upserts the configured device catalog. The engine only
// reads devices afterwards; administration happens outside.
func (db *DB) SeedDevices(ctx context.Context, devices []models.Device) error {
	query := `INSERT INTO devices (id, name, description, quantity, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	              name = excluded.name,
	              description = excluded.description,
	              quantity = excluded.quantity,
	              status = excluded.status,
	              updated_at = excluded.updated_at`

	now := time.Now()
	for _, d := range devices {
		if _, err := db.ExecContext(ctx, query, d.ID, d.Name, d.Description, d.Quantity, d.Status, now, now); err != nil {
			return fmt.Errorf("failed to seed device %d: %w", d.ID, err)
		}
	}
	db.logger.Info().Int("count", len(devices)).Msg("devices seeded")
	return nil
}

func (db *DB) GetDevice(ctx context.Context, id int64) (*models.Device, error) {
	query := `SELECT id, name, description, quantity, status, created_at, updated_at
	          FROM devices WHERE id = ?`

	var d models.Device
	var description, status sql.NullString
	err := db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Name, &description, &d.Quantity, &status, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	d.Description = description.String
	d.Status = status.String
	return &d, nil
}

func (db *DB) ListDevices(ctx context.Context) ([]*models.Device, error) {
	query := `SELECT id, name, description, quantity, status, created_at, updated_at
	          FROM devices ORDER BY id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		d := &models.Device{}
		var description, status sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &description, &d.Quantity, &status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		d.Description = description.String
		d.Status = status.String
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}
