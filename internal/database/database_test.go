package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"gameroom/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSeedAndGetDevices(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	devices := []models.Device{
		{ID: 1, Name: "PlayStation 5", Description: "Console in room A", Quantity: 2, Status: "available"},
		{ID: 2, Name: "Pool Table", Quantity: 1},
		{ID: 3, Name: "Broken VR Set", Quantity: 0, Status: "maintenance"},
	}
	require.NoError(t, db.SeedDevices(ctx, devices))

	d, err := db.GetDevice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "PlayStation 5", d.Name)
	assert.Equal(t, int64(2), d.Quantity)
	assert.True(t, d.Bookable())

	d, err = db.GetDevice(ctx, 3)
	require.NoError(t, err)
	assert.False(t, d.Bookable())

	_, err = db.GetDevice(ctx, 99)
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	all, err := db.ListDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Seeding again updates in place instead of duplicating.
	devices[0].Quantity = 5
	require.NoError(t, db.SeedDevices(ctx, devices))
	d, err = db.GetDevice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), d.Quantity)
	all, err = db.ListDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
