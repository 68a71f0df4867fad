package database

import "errors"

var (
	// ErrNotAvailable signals the device has no free capacity for the
	// requested window.
	ErrNotAvailable = errors.New("device not available for the requested window")

	ErrBookingNotFound = errors.New("booking not found")
	ErrDeviceNotFound  = errors.New("device not found")

	// ErrConcurrentModification signals a version-checked write lost the
	// race against another writer.
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)
