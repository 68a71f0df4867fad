package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		received = append(received, e)
		return nil
	})

	payload := BookingEventPayload{
		BookingID:     "b-1",
		OwnerID:       7,
		DeviceID:      1,
		StartTime:     time.Date(2030, 6, 10, 10, 0, 0, 0, time.UTC),
		DurationHours: 1.5,
		Status:        "Upcoming",
	}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	require.Len(t, received, 1)
	var got BookingEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &got))
	assert.Equal(t, payload.BookingID, got.BookingID)
	assert.Equal(t, payload.DurationHours, got.DurationHours)
}

func TestEventBusIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventBookingCancelled, func(e *Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: "x"}))
	assert.Zero(t, calls)
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}
