package scheduling

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labsync/labsync/models"
)

// ActiveStatuses are the statuses under which a booking still holds its slot
// and, once assigned, its technician.
var ActiveStatuses = []string{models.StatusPending, models.StatusAssigned, models.StatusInProgress}

func IsTerminal(status string) bool {
	return status == models.StatusCompleted || status == models.StatusCancelled
}

// Assign moves a pending booking to assigned and records the technician.
// Caller is responsible for having verified the technician is free.
func Assign(b *models.LabTestBooking, tech *models.Technician) error {
	switch b.Status {
	case models.StatusPending:
	case models.StatusAssigned, models.StatusInProgress:
		if b.TechnicianID != nil {
			return ErrAlreadyAssigned
		}
		return ErrInvalidTransition
	default:
		return ErrInvalidTransition
	}

	b.TechnicianID = &tech.ID
	b.Technician = tech
	b.Status = models.StatusAssigned
	return nil
}

// Start moves a booking to in-progress. An assigned booking may only be
// started by its assigned technician; a pending one may be started directly,
// recording the starter as its technician.
func Start(b *models.LabTestBooking, technicianID uuid.UUID) error {
	switch b.Status {
	case models.StatusInProgress:
		return ErrAlreadyInProgress
	case models.StatusCompleted, models.StatusCancelled:
		return ErrInvalidTransition
	case models.StatusAssigned:
		if b.TechnicianID == nil || *b.TechnicianID != technicianID {
			return ErrUnauthorized
		}
	case models.StatusPending:
		id := technicianID
		b.TechnicianID = &id
	default:
		return ErrInvalidTransition
	}

	b.Status = models.StatusInProgress
	return nil
}

// Complete moves an in-progress booking to completed and records the result.
func Complete(b *models.LabTestBooking, technicianID uuid.UUID, result, notes string) error {
	switch b.Status {
	case models.StatusCompleted:
		return ErrAlreadyCompleted
	case models.StatusInProgress:
	default:
		return ErrInvalidTransition
	}
	if b.TechnicianID == nil || *b.TechnicianID != technicianID {
		return ErrUnauthorized
	}
	if result == "" {
		return fmt.Errorf("%w: result is required to complete a booking", ErrValidation)
	}

	b.Result = result
	b.Notes = notes
	b.Status = models.StatusCompleted
	return nil
}

// Cancel is legal from any non-terminal status. The booking row is kept as
// audit history; cancelling only releases its slot and technician.
func Cancel(b *models.LabTestBooking) error {
	if IsTerminal(b.Status) {
		return ErrInvalidTransition
	}
	b.Status = models.StatusCancelled
	return nil
}
