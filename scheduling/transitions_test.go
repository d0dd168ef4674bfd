package scheduling

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/labsync/labsync/models"
)

func bookingWithStatus(status string) *models.LabTestBooking {
	slot := "09:00"
	return &models.LabTestBooking{
		ID:            uuid.New(),
		BookedBy:      uuid.New(),
		TestType:      []string{"Blood Sugar"},
		ScheduledDate: "2024-06-01",
		ScheduledTime: &slot,
		Status:        status,
	}
}

func TestAssign_OnlyFromPending(t *testing.T) {
	tech := &models.Technician{ID: uuid.New(), FullName: "Ama Mensah", IsActivated: true, IsAvailable: true}

	b := bookingWithStatus(models.StatusPending)
	if err := Assign(b, tech); err != nil {
		t.Fatalf("assign from pending: %v", err)
	}
	if b.Status != models.StatusAssigned {
		t.Errorf("status = %s, want assigned", b.Status)
	}
	if b.TechnicianID == nil || *b.TechnicianID != tech.ID {
		t.Error("technician not recorded on booking")
	}

	// Re-assigning an already assigned booking is rejected, not silently
	// overwritten.
	if err := Assign(b, tech); !errors.Is(err, ErrAlreadyAssigned) {
		t.Errorf("second assign: got %v, want ErrAlreadyAssigned", err)
	}

	for _, status := range []string{models.StatusCompleted, models.StatusCancelled} {
		b := bookingWithStatus(status)
		if err := Assign(b, tech); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("assign from %s: got %v, want ErrInvalidTransition", status, err)
		}
	}
}

func TestStart_Guards(t *testing.T) {
	techID := uuid.New()

	// Direct start of a pending booking records the starter.
	b := bookingWithStatus(models.StatusPending)
	if err := Start(b, techID); err != nil {
		t.Fatalf("start from pending: %v", err)
	}
	if b.Status != models.StatusInProgress {
		t.Errorf("status = %s, want in-progress", b.Status)
	}
	if b.TechnicianID == nil || *b.TechnicianID != techID {
		t.Error("starter not recorded as technician")
	}

	if err := Start(b, techID); !errors.Is(err, ErrAlreadyInProgress) {
		t.Errorf("second start: got %v, want ErrAlreadyInProgress", err)
	}

	// Only the assigned technician may start an assigned booking.
	b = bookingWithStatus(models.StatusAssigned)
	assigned := uuid.New()
	b.TechnicianID = &assigned
	if err := Start(b, techID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("start by wrong technician: got %v, want ErrUnauthorized", err)
	}
	if err := Start(b, assigned); err != nil {
		t.Errorf("start by assigned technician: %v", err)
	}

	for _, status := range []string{models.StatusCompleted, models.StatusCancelled} {
		b := bookingWithStatus(status)
		if err := Start(b, techID); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("start from %s: got %v, want ErrInvalidTransition", status, err)
		}
	}
}

func TestComplete_Guards(t *testing.T) {
	techID := uuid.New()

	b := bookingWithStatus(models.StatusInProgress)
	b.TechnicianID = &techID

	if err := Complete(b, techID, "", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("complete without result: got %v, want ErrValidation", err)
	}
	if err := Complete(b, uuid.New(), "negative", ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("complete by wrong technician: got %v, want ErrUnauthorized", err)
	}

	if err := Complete(b, techID, "negative", "no abnormalities"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if b.Status != models.StatusCompleted || b.Result != "negative" || b.Notes != "no abnormalities" {
		t.Errorf("completion not recorded: %+v", b)
	}

	// Duplicate completion is rejected so result emails cannot double-fire.
	if err := Complete(b, techID, "negative", "no abnormalities"); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("second complete: got %v, want ErrAlreadyCompleted", err)
	}

	for _, status := range []string{models.StatusPending, models.StatusAssigned, models.StatusCancelled} {
		b := bookingWithStatus(status)
		b.TechnicianID = &techID
		if err := Complete(b, techID, "negative", ""); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("complete from %s: got %v, want ErrInvalidTransition", status, err)
		}
	}
}

func TestCancel_LegalFromAnyNonTerminal(t *testing.T) {
	for _, status := range []string{models.StatusPending, models.StatusAssigned, models.StatusInProgress} {
		b := bookingWithStatus(status)
		if err := Cancel(b); err != nil {
			t.Errorf("cancel from %s: %v", status, err)
		}
		if b.Status != models.StatusCancelled {
			t.Errorf("cancel from %s: status = %s", status, b.Status)
		}
	}

	for _, status := range []string{models.StatusCompleted, models.StatusCancelled} {
		b := bookingWithStatus(status)
		if err := Cancel(b); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("cancel from %s: got %v, want ErrInvalidTransition", status, err)
		}
	}
}
