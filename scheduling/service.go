package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labsync/labsync/models"
)

const (
	RolePatient    = "patient"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// Principal is the already-authenticated caller handed in by the auth
// boundary. Core operations only ever check ownership, assignment and the
// admin flag against it.
type Principal struct {
	ID   uuid.UUID
	Role string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Notifier delivers booking lifecycle emails. Calls are made after the
// state-changing write commits, are never awaited, and their failure never
// reverses booking state.
type Notifier interface {
	BookingConfirmed(b *models.LabTestBooking)
	TechnicianAssigned(b *models.LabTestBooking, t *models.Technician)
	ResultReady(b *models.LabTestBooking)
}

type BookingRequest struct {
	PatientDetails models.PatientDetails
	TestType       []string
	ScheduledDate  string
	ScheduledTime  string
	Priority       string
}

type UpdateRequest struct {
	ScheduledDate string
	ScheduledTime string
	TestType      []string
	Priority      string
	Notes         *string
}

type StartRequest struct {
	Description       string
	Instructions      string
	RequiredEquipment []string
}

type Service struct {
	Ledger   Ledger
	Notifier Notifier
	Grid     Grid
}

func NewService(ledger Ledger, notifier Notifier) *Service {
	return &Service{Ledger: ledger, Notifier: notifier, Grid: DefaultGrid()}
}

// Book creates a pending booking for the requested slot, or fails with
// ErrSlotConflict when another patient holds the slot. The informational
// estimated duration is stored on the booking.
func (s *Service) Book(ctx context.Context, p Principal, req BookingRequest) (*models.LabTestBooking, error) {
	if err := validateTests(req.TestType); err != nil {
		return nil, err
	}
	if err := s.validateSlot(req.ScheduledDate, req.ScheduledTime); err != nil {
		return nil, err
	}
	priority, err := normalizePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	if req.PatientDetails.FullName == "" || req.PatientDetails.Email == "" {
		return nil, fmt.Errorf("%w: patient name and email are required", ErrValidation)
	}

	slot := req.ScheduledTime
	booking := &models.LabTestBooking{
		BookedBy:          p.ID,
		PatientDetails:    req.PatientDetails,
		TestType:          req.TestType,
		ScheduledDate:     req.ScheduledDate,
		ScheduledTime:     &slot,
		Priority:          priority,
		EstimatedDuration: FormatDuration(EstimatedDuration(len(req.TestType))),
		Status:            models.StatusPending,
	}

	err = s.Ledger.Atomically(ctx, func(tx Ledger) error {
		taken, err := tx.SlotTaken(ctx, req.ScheduledDate, req.ScheduledTime, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotConflict
		}
		return tx.CreateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.BookingConfirmed(booking)
	}
	return booking, nil
}

// AvailableSlots lists the free slot starts for a date, ascending.
func (s *Service) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	taken, err := s.Ledger.TakenTimes(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.Grid.Available(taken), nil
}

// Reschedule lets the owner move or amend a booking before it reaches a
// terminal status. Test types are frozen once assignment begins.
func (s *Service) Reschedule(ctx context.Context, p Principal, id uuid.UUID, req UpdateRequest) (*models.LabTestBooking, error) {
	var booking *models.LabTestBooking
	err := s.Ledger.Atomically(ctx, func(tx Ledger) error {
		b, err := tx.BookingForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.BookedBy != p.ID && !p.IsAdmin() {
			return ErrUnauthorized
		}
		if IsTerminal(b.Status) {
			return ErrInvalidTransition
		}

		if len(req.TestType) > 0 {
			if b.Status != models.StatusPending {
				return fmt.Errorf("%w: tests cannot change after a technician is assigned", ErrInvalidTransition)
			}
			if err := validateTests(req.TestType); err != nil {
				return err
			}
			b.TestType = req.TestType
			b.EstimatedDuration = FormatDuration(EstimatedDuration(len(req.TestType)))
		}

		date, slot := b.ScheduledDate, ""
		if b.ScheduledTime != nil {
			slot = *b.ScheduledTime
		}
		if req.ScheduledDate != "" {
			date = req.ScheduledDate
		}
		if req.ScheduledTime != "" {
			slot = req.ScheduledTime
		}
		if date != b.ScheduledDate || b.ScheduledTime == nil || slot != *b.ScheduledTime {
			if err := s.validateSlot(date, slot); err != nil {
				return err
			}
			taken, err := tx.SlotTaken(ctx, date, slot, b.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotConflict
			}
			b.ScheduledDate = date
			b.ScheduledTime = &slot
		}

		if req.Priority != "" {
			priority, err := normalizePriority(req.Priority)
			if err != nil {
				return err
			}
			b.Priority = priority
		}
		if req.Notes != nil {
			b.Notes = *req.Notes
		}

		booking = b
		return tx.SaveBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// AssignAuto picks a free technician for a pending booking, preferring one
// whose specialties cover the first requested test. Fails with
// ErrTechnicianUnavailable when every technician holds an active job.
func (s *Service) AssignAuto(ctx context.Context, id uuid.UUID) (*models.LabTestBooking, error) {
	var booking *models.LabTestBooking
	var assigned *models.Technician

	err := s.Ledger.Atomically(ctx, func(tx Ledger) error {
		b, err := tx.BookingForUpdate(ctx, id)
		if err != nil {
			return err
		}

		busyIDs, err := tx.ActiveTechnicianIDs(ctx)
		if err != nil {
			return err
		}
		busy := make(map[uuid.UUID]bool, len(busyIDs))
		for _, tid := range busyIDs {
			busy[tid] = true
		}

		pool, err := tx.Technicians(ctx)
		if err != nil {
			return err
		}

		specialty := ""
		if len(b.TestType) > 0 {
			specialty = SpecialtyFor(b.TestType[0])
		}
		tech := PickTechnician(pool, busy, specialty)
		if tech == nil {
			tech = PickTechnician(pool, busy, "")
		}
		if tech == nil {
			return ErrTechnicianUnavailable
		}

		if err := Assign(b, tech); err != nil {
			return err
		}
		booking, assigned = b, tech
		return tx.SaveBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.TechnicianAssigned(booking, assigned)
	}
	return booking, nil
}

// AssignTo is the admin override. The target technician's availability is
// re-validated at call time.
func (s *Service) AssignTo(ctx context.Context, id, technicianID uuid.UUID) (*models.LabTestBooking, error) {
	var booking *models.LabTestBooking
	var assigned *models.Technician

	err := s.Ledger.Atomically(ctx, func(tx Ledger) error {
		b, err := tx.BookingForUpdate(ctx, id)
		if err != nil {
			return err
		}
		tech, err := tx.TechnicianByID(ctx, technicianID)
		if err != nil {
			return err
		}
		if !tech.IsActivated || !tech.IsAvailable {
			return ErrTechnicianUnavailable
		}
		active, err := tx.HasActiveJob(ctx, tech.ID)
		if err != nil {
			return err
		}
		if active {
			return ErrTechnicianUnavailable
		}

		if err := Assign(b, tech); err != nil {
			return err
		}
		booking, assigned = b, tech
		return tx.SaveBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.TechnicianAssigned(booking, assigned)
	}
	return booking, nil
}

// Start opens a lab task and moves the booking to in-progress. Only the
// assigned technician may start an assigned booking; a pending booking may be
// started directly by an activated, free technician, who then becomes its
// technician.
func (s *Service) Start(ctx context.Context, p Principal, id uuid.UUID, req StartRequest) (*models.LabTestBooking, *models.LabTask, error) {
	var booking *models.LabTestBooking
	var task *models.LabTask

	err := s.Ledger.Atomically(ctx, func(tx Ledger) error {
		b, err := tx.BookingForUpdate(ctx, id)
		if err != nil {
			return err
		}
		tech, err := tx.TechnicianByID(ctx, p.ID)
		if err != nil {
			return err
		}

		// Starting a pending booking claims the technician, so the same
		// one-active-job rule as assignment applies.
		if b.Status == models.StatusPending {
			if !tech.IsActivated {
				return ErrTechnicianUnavailable
			}
			busy, err := tx.HasActiveJob(ctx, tech.ID)
			if err != nil {
				return err
			}
			if busy {
				return ErrTechnicianUnavailable
			}
		}

		if err := Start(b, tech.ID); err != nil {
			return err
		}

		task = &models.LabTask{
			BookingID:    b.ID,
			TechnicianID: tech.ID,
			TestDetails: models.TestDetails{
				Description:       req.Description,
				Instructions:      req.Instructions,
				RequiredEquipment: req.RequiredEquipment,
			},
			TaskInfo: models.TaskInfo{
				RequestedBy:       tech.FullName,
				RequestedDate:     time.Now(),
				EstimatedDuration: b.EstimatedDuration,
			},
		}
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}

		booking = b
		return tx.SaveBooking(ctx, b)
	})
	if err != nil {
		return nil, nil, err
	}
	return booking, task, nil
}

// Complete records the result and closes the booking, releasing the
// technician for their next assignment.
func (s *Service) Complete(ctx context.Context, p Principal, id uuid.UUID, result, notes string) (*models.LabTestBooking, error) {
	var booking *models.LabTestBooking
	err := s.Ledger.Atomically(ctx, func(tx Ledger) error {
		b, err := tx.BookingForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := Complete(b, p.ID, result, notes); err != nil {
			return err
		}
		booking = b
		return tx.SaveBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.ResultReady(booking)
	}
	return booking, nil
}

// Cancel soft-deletes a booking: the row stays for audit, the slot and any
// technician are released.
func (s *Service) Cancel(ctx context.Context, p Principal, id uuid.UUID) (*models.LabTestBooking, error) {
	var booking *models.LabTestBooking
	err := s.Ledger.Atomically(ctx, func(tx Ledger) error {
		b, err := tx.BookingForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.BookedBy != p.ID && !p.IsAdmin() {
			return ErrUnauthorized
		}
		if err := Cancel(b); err != nil {
			return err
		}
		booking = b
		return tx.SaveBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelIfPending cancels a booking only if it is still pending once the row
// lock is held. A booking a technician picked up between the caller's scan
// and this call is left untouched.
func (s *Service) CancelIfPending(ctx context.Context, id uuid.UUID) (bool, error) {
	var cancelled bool
	err := s.Ledger.Atomically(ctx, func(tx Ledger) error {
		b, err := tx.BookingForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != models.StatusPending {
			return nil
		}
		if err := Cancel(b); err != nil {
			return err
		}
		cancelled = true
		return tx.SaveBooking(ctx, b)
	})
	return cancelled, err
}

// Get returns a booking to its owner, its assigned technician, or an admin.
func (s *Service) Get(ctx context.Context, p Principal, id uuid.UUID) (*models.LabTestBooking, error) {
	b, err := s.Ledger.BookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case p.IsAdmin():
	case b.BookedBy == p.ID:
	case b.TechnicianID != nil && *b.TechnicianID == p.ID && p.Role == RoleTechnician:
	default:
		return nil, ErrUnauthorized
	}
	return b, nil
}

func (s *Service) ForPatient(ctx context.Context, p Principal) ([]models.LabTestBooking, error) {
	return s.Ledger.Bookings(ctx, Filter{BookedBy: &p.ID})
}

func (s *Service) ForTechnician(ctx context.Context, p Principal) ([]models.LabTestBooking, error) {
	return s.Ledger.Bookings(ctx, Filter{TechnicianID: &p.ID})
}

// Search is the admin-only unscoped query.
func (s *Service) Search(ctx context.Context, f Filter) ([]models.LabTestBooking, error) {
	return s.Ledger.Bookings(ctx, f)
}

func (s *Service) validateSlot(date, slot string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: scheduled date must be YYYY-MM-DD", ErrValidation)
	}
	if !s.Grid.Contains(slot) {
		return fmt.Errorf("%w: %q is not a bookable slot start", ErrValidation, slot)
	}
	return nil
}

func validateTests(tests []string) error {
	if len(tests) == 0 {
		return fmt.Errorf("%w: at least one test must be selected", ErrValidation)
	}
	for _, t := range tests {
		if !ValidTestType(t) {
			return fmt.Errorf("%w: unknown test type %q", ErrValidation, t)
		}
	}
	return nil
}

func normalizePriority(p string) (string, error) {
	switch p {
	case "":
		return "normal", nil
	case "high", "normal", "low":
		return p, nil
	default:
		return "", fmt.Errorf("%w: priority must be high, normal or low", ErrValidation)
	}
}
