package service

import (
	"time"

	"gameroom/internal/domain"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock used outside tests.
func SystemClock() domain.Clock { return systemClock{} }
