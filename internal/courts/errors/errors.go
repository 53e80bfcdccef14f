package errors

import "errors"

var (
	ErrCapacityExceeded = errors.New("court slot capacity exceeded")

	ErrInvalidDateRange = errors.New("start date must not be after end date")
)
