package scheduling

import "errors"

// Stable error kinds surfaced by every core operation. Handlers map these
// onto HTTP statuses; nothing else in the API contract depends on message
// text.
var (
	ErrNotFound              = errors.New("booking or technician not found")
	ErrInvalidTransition     = errors.New("status transition not allowed")
	ErrSlotConflict          = errors.New("selected time is already booked by another patient")
	ErrTechnicianUnavailable = errors.New("no technician available for this job")
	ErrAlreadyAssigned       = errors.New("booking already has a technician assigned")
	ErrAlreadyInProgress     = errors.New("booking has already been started")
	ErrAlreadyCompleted      = errors.New("booking has already been completed")
	ErrUnauthorized          = errors.New("not allowed to act on this booking")
	ErrValidation            = errors.New("invalid booking data")
)
