package service

import (
	"errors"

	"github.com/nurpe/pestcare-visits/internal/schedule"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")

	ErrInvalidInput      = schedule.ErrValidation
	ErrInvalidTransition = schedule.ErrInvalidTransition
	ErrScheduleViolation = schedule.ErrScheduleViolation
)
