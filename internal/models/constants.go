package models

const (
	StatusUpcoming  = "Upcoming"
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

const (
	// OpeningHour and ClosingHour bound the start of a booking: a booking
	// may only start at an hour in [OpeningHour, ClosingHour). Its window
	// may run past closing; schedule computation clips it.
	OpeningHour = 8
	ClosingHour = 20

	MinDurationHours  = 0.5
	MaxDurationHours  = 2.0
	DurationStepHours = 0.5

	// PasscodeLength digits in a booking access code.
	PasscodeLength = 6
)

const (
	SegmentFree    = "Free"
	SegmentPartial = "Partial"
	SegmentFull    = "Full"
)
