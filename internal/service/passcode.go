package service

import (
	"fmt"
	"math/rand"

	"gameroom/internal/models"
)

// NewPasscode produces the access code handed out with a confirmed
// booking. Codes are scoped to a single booking's confirmation, so
// collisions between bookings are tolerated and uniqueness is not
// enforced.
func NewPasscode() string {
	limit := 1
	for i := 0; i < models.PasscodeLength; i++ {
		limit *= 10
	}
	return fmt.Sprintf("%0*d", models.PasscodeLength, rand.Intn(limit))
}
