package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"gameroom/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentBookingCapacityInvariant(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedOneDevice(t, db, 1, 1)

	start := time.Date(2030, 6, 10, 10, 0, 0, 0, time.UTC)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(owner int64) {
			defer wg.Done()
			b := &models.Booking{
				ID:             uuid.NewString(),
				OwnerID:        owner,
				DeviceID:       1,
				StartTime:      start,
				DurationHours:  1.0,
				IsPlayingAlone: true,
				Status:         models.StatusUpcoming,
				Passcode:       "000000",
			}
			results <- db.CreateBookingLocked(ctx, b)
		}(int64(i))
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		}
	}

	// With quantity 1 exactly one racing create may win.
	assert.Equal(t, 1, successCount)

	count, err := db.CountOverlapping(ctx, 1, start, start.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
