package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labsync/labsync/models"
)

// Filter narrows ledger booking queries. Non-admin callers are always scoped
// by BookedBy or TechnicianID; only the admin surface queries unscoped.
type Filter struct {
	BookedBy     *uuid.UUID
	TechnicianID *uuid.UUID
	Status       string
	Date         string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// Ledger is the persistence boundary for bookings and technicians. All
// mutations happen inside Atomically so that the availability check and the
// subsequent write are serialized: a losing concurrent request gets a
// conflict error instead of corrupting state.
type Ledger interface {
	// Atomically runs fn inside a transaction; the Ledger passed to fn sees
	// and writes only that transaction's state.
	Atomically(ctx context.Context, fn func(tx Ledger) error) error

	CreateBooking(ctx context.Context, b *models.LabTestBooking) error
	SaveBooking(ctx context.Context, b *models.LabTestBooking) error
	BookingByID(ctx context.Context, id uuid.UUID) (*models.LabTestBooking, error)
	// BookingForUpdate row-locks the booking for the rest of the enclosing
	// transaction.
	BookingForUpdate(ctx context.Context, id uuid.UUID) (*models.LabTestBooking, error)
	Bookings(ctx context.Context, f Filter) ([]models.LabTestBooking, error)

	// SlotTaken reports whether a non-terminal booking other than exclude
	// occupies (date, slot).
	SlotTaken(ctx context.Context, date, slot string, exclude uuid.UUID) (bool, error)
	// TakenTimes lists the slot starts held by non-terminal bookings on date,
	// ascending.
	TakenTimes(ctx context.Context, date string) ([]string, error)

	// Technicians returns all technicians in stable (created_at, id) order.
	Technicians(ctx context.Context) ([]models.Technician, error)
	TechnicianByID(ctx context.Context, id uuid.UUID) (*models.Technician, error)
	// ActiveTechnicianIDs lists technicians currently holding an assigned or
	// in-progress booking.
	ActiveTechnicianIDs(ctx context.Context) ([]uuid.UUID, error)
	HasActiveJob(ctx context.Context, technicianID uuid.UUID) (bool, error)

	CreateTask(ctx context.Context, task *models.LabTask) error
}
