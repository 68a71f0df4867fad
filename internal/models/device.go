package models

import "time"

type Device struct {
	ID          int64     `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description,omitempty"`
	Quantity    int64     `yaml:"quantity" json:"quantity"`
	Status      string    `yaml:"status" json:"status,omitempty"` // informational, never gates allocation
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
}

// Bookable reports whether the device can be reserved at all.
// Quantity zero or negative means the device never accepts bookings.
func (d *Device) Bookable() bool {
	return d.Quantity > 0
}
