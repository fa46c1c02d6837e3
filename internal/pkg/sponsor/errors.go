package sponsor

import "errors"

var (
	// ErrCapacityExceeded means the target month already holds the maximum
	// number of active slots. The caller must pick a different month.
	ErrCapacityExceeded = errors.New("sponsor month is fully booked")

	// ErrSlotNotFound means the referenced slot id does not exist. No
	// partial mutation occurs.
	ErrSlotNotFound = errors.New("sponsor slot not found")

	// ErrInvalidInput wraps validation failures on purchase input.
	ErrInvalidInput = errors.New("invalid sponsor input")
)
