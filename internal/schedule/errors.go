package schedule

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrScheduleViolation = errors.New("schedule violation")
)
