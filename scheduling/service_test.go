package scheduling

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labsync/labsync/models"
)

// memLedger is an in-memory Ledger for exercising the service without a
// database. It enforces the same active-slot uniqueness the Postgres partial
// index does.
type memLedger struct {
	mu          sync.Mutex
	bookings    map[uuid.UUID]*models.LabTestBooking
	technicians []models.Technician
	tasks       []*models.LabTask
}

func newMemLedger() *memLedger {
	return &memLedger{bookings: make(map[uuid.UUID]*models.LabTestBooking)}
}

func (m *memLedger) Atomically(ctx context.Context, fn func(tx Ledger) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func (m *memLedger) activeSlotHolder(date, slot string, exclude uuid.UUID) *models.LabTestBooking {
	for _, b := range m.bookings {
		if b.ID == exclude || IsTerminal(b.Status) || b.ScheduledTime == nil {
			continue
		}
		if b.ScheduledDate == date && *b.ScheduledTime == slot {
			return b
		}
	}
	return nil
}

// technicianActiveElsewhere mirrors the partial unique index on active
// technician ids: at most one assigned or in-progress booking per technician.
func (m *memLedger) technicianActiveElsewhere(b *models.LabTestBooking) bool {
	if b.TechnicianID == nil {
		return false
	}
	if b.Status != models.StatusAssigned && b.Status != models.StatusInProgress {
		return false
	}
	for _, other := range m.bookings {
		if other.ID == b.ID || other.TechnicianID == nil {
			continue
		}
		if other.Status != models.StatusAssigned && other.Status != models.StatusInProgress {
			continue
		}
		if *other.TechnicianID == *b.TechnicianID {
			return true
		}
	}
	return false
}

func (m *memLedger) checkWrite(b *models.LabTestBooking) error {
	if b.ScheduledTime != nil && !IsTerminal(b.Status) {
		if m.activeSlotHolder(b.ScheduledDate, *b.ScheduledTime, b.ID) != nil {
			return ErrSlotConflict
		}
	}
	if m.technicianActiveElsewhere(b) {
		return ErrTechnicianUnavailable
	}
	return nil
}

func (m *memLedger) CreateBooking(ctx context.Context, b *models.LabTestBooking) error {
	if err := m.checkWrite(b); err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	stored := *b
	m.bookings[b.ID] = &stored
	return nil
}

func (m *memLedger) SaveBooking(ctx context.Context, b *models.LabTestBooking) error {
	if _, ok := m.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	if err := m.checkWrite(b); err != nil {
		return err
	}
	stored := *b
	m.bookings[b.ID] = &stored
	return nil
}

func (m *memLedger) BookingByID(ctx context.Context, id uuid.UUID) (*models.LabTestBooking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *memLedger) BookingForUpdate(ctx context.Context, id uuid.UUID) (*models.LabTestBooking, error) {
	return m.BookingByID(ctx, id)
}

func (m *memLedger) Bookings(ctx context.Context, f Filter) ([]models.LabTestBooking, error) {
	var out []models.LabTestBooking
	for _, b := range m.bookings {
		if f.BookedBy != nil && b.BookedBy != *f.BookedBy {
			continue
		}
		if f.TechnicianID != nil && (b.TechnicianID == nil || *b.TechnicianID != *f.TechnicianID) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Date != "" && b.ScheduledDate != f.Date {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledDate != out[j].ScheduledDate {
			return out[i].ScheduledDate < out[j].ScheduledDate
		}
		si, sj := "", ""
		if out[i].ScheduledTime != nil {
			si = *out[i].ScheduledTime
		}
		if out[j].ScheduledTime != nil {
			sj = *out[j].ScheduledTime
		}
		return si < sj
	})
	return out, nil
}

func (m *memLedger) SlotTaken(ctx context.Context, date, slot string, exclude uuid.UUID) (bool, error) {
	return m.activeSlotHolder(date, slot, exclude) != nil, nil
}

func (m *memLedger) TakenTimes(ctx context.Context, date string) ([]string, error) {
	var times []string
	for _, b := range m.bookings {
		if IsTerminal(b.Status) || b.ScheduledTime == nil || b.ScheduledDate != date {
			continue
		}
		times = append(times, *b.ScheduledTime)
	}
	sort.Strings(times)
	return times, nil
}

func (m *memLedger) Technicians(ctx context.Context) ([]models.Technician, error) {
	return append([]models.Technician(nil), m.technicians...), nil
}

func (m *memLedger) TechnicianByID(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	for i := range m.technicians {
		if m.technicians[i].ID == id {
			out := m.technicians[i]
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memLedger) ActiveTechnicianIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, b := range m.bookings {
		if b.TechnicianID == nil {
			continue
		}
		if b.Status == models.StatusAssigned || b.Status == models.StatusInProgress {
			ids = append(ids, *b.TechnicianID)
		}
	}
	return ids, nil
}

func (m *memLedger) HasActiveJob(ctx context.Context, technicianID uuid.UUID) (bool, error) {
	ids, _ := m.ActiveTechnicianIDs(ctx)
	for _, id := range ids {
		if id == technicianID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLedger) CreateTask(ctx context.Context, task *models.LabTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *memLedger) addTechnician(name string, specialties ...string) uuid.UUID {
	t := models.Technician{
		ID:          uuid.New(),
		FullName:    name,
		Email:       name + "@labsync.test",
		IsActivated: true,
		IsAvailable: true,
		Specialties: specialties,
	}
	m.technicians = append(m.technicians, t)
	return t.ID
}

type recordingNotifier struct {
	confirmed []uuid.UUID
	assigned  []uuid.UUID
	results   []uuid.UUID
}

func (r *recordingNotifier) BookingConfirmed(b *models.LabTestBooking) {
	r.confirmed = append(r.confirmed, b.ID)
}

func (r *recordingNotifier) TechnicianAssigned(b *models.LabTestBooking, t *models.Technician) {
	r.assigned = append(r.assigned, b.ID)
}

func (r *recordingNotifier) ResultReady(b *models.LabTestBooking) {
	r.results = append(r.results, b.ID)
}

func newTestService() (*Service, *memLedger, *recordingNotifier) {
	ledger := newMemLedger()
	notifier := &recordingNotifier{}
	return NewService(ledger, notifier), ledger, notifier
}

func patient() Principal {
	return Principal{ID: uuid.New(), Role: RolePatient}
}

func bookingRequest(date, slot string, tests ...string) BookingRequest {
	return BookingRequest{
		PatientDetails: models.PatientDetails{
			FullName: "Kwame Asante",
			Age:      34,
			Gender:   "male",
			Email:    "kwame@example.com",
		},
		TestType:      tests,
		ScheduledDate: date,
		ScheduledTime: slot,
	}
}

func TestBook_CreatesPendingBooking(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	booking, err := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if booking.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", booking.Status)
	}
	if booking.EstimatedDuration != "15 minutes" {
		t.Errorf("estimated duration = %q, want \"15 minutes\"", booking.EstimatedDuration)
	}
	if booking.Priority != "normal" {
		t.Errorf("priority = %q, want normal default", booking.Priority)
	}
	if len(notifier.confirmed) != 1 || notifier.confirmed[0] != booking.ID {
		t.Error("booking confirmation not dispatched")
	}
}

func TestBook_SlotConflict(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	if _, err := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar")); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Full Blood Count"))
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("second booking: got %v, want ErrSlotConflict", err)
	}
	if len(notifier.confirmed) != 1 {
		t.Error("losing booking must not trigger a confirmation email")
	}
}

func TestBook_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for name, req := range map[string]BookingRequest{
		"no tests":      bookingRequest("2024-06-01", "09:00"),
		"unknown test":  bookingRequest("2024-06-01", "09:00", "Palm Reading"),
		"off-grid time": bookingRequest("2024-06-01", "09:07", "Blood Sugar"),
		"after close":   bookingRequest("2024-06-01", "17:00", "Blood Sugar"),
		"bad date":      bookingRequest("01-06-2024", "09:00", "Blood Sugar"),
	} {
		if _, err := svc.Book(ctx, patient(), req); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: got %v, want ErrValidation", name, err)
		}
	}
}

func TestAvailableSlots_ExcludesActiveBookings(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := patient()

	booking, err := svc.Book(ctx, owner, bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	slots, err := svc.AvailableSlots(ctx, "2024-06-01")
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 35 {
		t.Errorf("expected 35 free slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s == "09:00" {
			t.Error("booked slot still listed as free")
		}
	}

	// Cancelling releases the slot.
	if _, err := svc.Cancel(ctx, owner, booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	slots, _ = svc.AvailableSlots(ctx, "2024-06-01")
	if len(slots) != 36 {
		t.Errorf("expected all 36 slots free after cancellation, got %d", len(slots))
	}
}

func TestAssignAuto_SingleActiveJob(t *testing.T) {
	svc, ledger, notifier := newTestService()
	ctx := context.Background()

	techA := ledger.addTechnician("Ama")
	ledger.addTechnician("Kofi")

	b1, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	b2, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:15", "Blood Sugar"))
	b3, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:30", "Blood Sugar"))

	a1, err := svc.AssignAuto(ctx, b1.ID)
	if err != nil {
		t.Fatalf("assign b1: %v", err)
	}
	if *a1.TechnicianID != techA {
		t.Errorf("expected first technician for b1")
	}

	a2, err := svc.AssignAuto(ctx, b2.ID)
	if err != nil {
		t.Fatalf("assign b2: %v", err)
	}
	if *a2.TechnicianID == techA {
		t.Error("busy technician handed a second active job")
	}

	// Pool exhausted.
	if _, err := svc.AssignAuto(ctx, b3.ID); !errors.Is(err, ErrTechnicianUnavailable) {
		t.Fatalf("assign b3: got %v, want ErrTechnicianUnavailable", err)
	}

	// Completing b1 releases its technician for b3.
	techPrincipal := Principal{ID: techA, Role: RoleTechnician}
	if _, _, err := svc.Start(ctx, techPrincipal, b1.ID, StartRequest{}); err != nil {
		t.Fatalf("start b1: %v", err)
	}
	if _, err := svc.Complete(ctx, techPrincipal, b1.ID, "negative", ""); err != nil {
		t.Fatalf("complete b1: %v", err)
	}

	a3, err := svc.AssignAuto(ctx, b3.ID)
	if err != nil {
		t.Fatalf("assign b3 after release: %v", err)
	}
	if *a3.TechnicianID != techA {
		t.Error("released technician not reused")
	}

	if len(notifier.assigned) != 3 {
		t.Errorf("expected 3 assignment notices, got %d", len(notifier.assigned))
	}
}

func TestAssignAuto_PrefersSpecialty(t *testing.T) {
	svc, ledger, _ := newTestService()
	ctx := context.Background()

	ledger.addTechnician("Generalist", "Other")
	specialist := ledger.addTechnician("Phlebotomist", "Blood Test")

	b, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	assigned, err := svc.AssignAuto(ctx, b.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if *assigned.TechnicianID != specialist {
		t.Error("specialty match not preferred")
	}
}

func TestAssignTo_RevalidatesAvailability(t *testing.T) {
	svc, ledger, _ := newTestService()
	ctx := context.Background()

	techA := ledger.addTechnician("Ama")

	b1, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	b2, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:15", "Blood Sugar"))

	if _, err := svc.AssignTo(ctx, b1.ID, techA); err != nil {
		t.Fatalf("manual assign: %v", err)
	}

	// Target already holds an active job.
	if _, err := svc.AssignTo(ctx, b2.ID, techA); !errors.Is(err, ErrTechnicianUnavailable) {
		t.Fatalf("assign busy technician: got %v, want ErrTechnicianUnavailable", err)
	}

	// Re-assigning the same booking is rejected.
	if _, err := svc.AssignTo(ctx, b1.ID, techA); !errors.Is(err, ErrAlreadyAssigned) &&
		!errors.Is(err, ErrTechnicianUnavailable) {
		t.Fatalf("re-assign: got %v", err)
	}

	b3, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:30", "Blood Sugar"))

	// Deactivated technicians are never assignable.
	ledger.technicians[0].IsActivated = false
	if _, err := svc.AssignTo(ctx, b3.ID, techA); !errors.Is(err, ErrTechnicianUnavailable) {
		t.Fatalf("assign deactivated technician: got %v, want ErrTechnicianUnavailable", err)
	}

	// Same for technicians who toggled themselves unavailable.
	ledger.technicians[0].IsActivated = true
	ledger.technicians[0].IsAvailable = false
	if _, err := svc.AssignTo(ctx, b3.ID, techA); !errors.Is(err, ErrTechnicianUnavailable) {
		t.Fatalf("assign unavailable technician: got %v, want ErrTechnicianUnavailable", err)
	}
}

func TestStart_CreatesLabTask(t *testing.T) {
	svc, ledger, _ := newTestService()
	ctx := context.Background()

	techID := ledger.addTechnician("Ama")
	techPrincipal := Principal{ID: techID, Role: RoleTechnician}

	b, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar", "Full Blood Count"))

	started, task, err := svc.Start(ctx, techPrincipal, b.ID, StartRequest{
		Description:  "Routine draw",
		Instructions: "Fasting sample",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != models.StatusInProgress {
		t.Errorf("status = %s, want in-progress", started.Status)
	}
	if task.TaskInfo.RequestedBy != "Ama" {
		t.Errorf("task requested_by = %q, want technician name", task.TaskInfo.RequestedBy)
	}
	if task.TaskInfo.EstimatedDuration != "20 minutes" {
		t.Errorf("task estimated duration = %q, want \"20 minutes\"", task.TaskInfo.EstimatedDuration)
	}
	if len(ledger.tasks) != 1 {
		t.Fatalf("expected 1 lab task, got %d", len(ledger.tasks))
	}

	if _, _, err := svc.Start(ctx, techPrincipal, b.ID, StartRequest{}); !errors.Is(err, ErrAlreadyInProgress) {
		t.Errorf("second start: got %v, want ErrAlreadyInProgress", err)
	}
}

func TestStart_PendingRequiresFreeTechnician(t *testing.T) {
	svc, ledger, _ := newTestService()
	ctx := context.Background()

	techA := ledger.addTechnician("Ama")
	techPrincipal := Principal{ID: techA, Role: RoleTechnician}

	b1, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	b2, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:15", "Blood Sugar"))

	if _, err := svc.AssignTo(ctx, b1.ID, techA); err != nil {
		t.Fatalf("assign b1: %v", err)
	}

	// Holding an assigned booking blocks a direct start of another one.
	if _, _, err := svc.Start(ctx, techPrincipal, b2.ID, StartRequest{}); !errors.Is(err, ErrTechnicianUnavailable) {
		t.Fatalf("start while assigned elsewhere: got %v, want ErrTechnicianUnavailable", err)
	}

	got, _ := svc.Get(ctx, Principal{ID: uuid.New(), Role: RoleAdmin}, b2.ID)
	if got.Status != models.StatusPending {
		t.Errorf("b2 status = %s, want pending untouched", got.Status)
	}

	// Completing b1 frees the technician for b2.
	if _, _, err := svc.Start(ctx, techPrincipal, b1.ID, StartRequest{}); err != nil {
		t.Fatalf("start b1: %v", err)
	}
	if _, err := svc.Complete(ctx, techPrincipal, b1.ID, "negative", ""); err != nil {
		t.Fatalf("complete b1: %v", err)
	}
	if _, _, err := svc.Start(ctx, techPrincipal, b2.ID, StartRequest{}); err != nil {
		t.Fatalf("start b2 after release: %v", err)
	}

	// Deactivated technicians cannot claim pending bookings either.
	techB := ledger.addTechnician("Kofi")
	ledger.technicians[1].IsActivated = false
	b3, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:30", "Blood Sugar"))
	if _, _, err := svc.Start(ctx, Principal{ID: techB, Role: RoleTechnician}, b3.ID, StartRequest{}); !errors.Is(err, ErrTechnicianUnavailable) {
		t.Fatalf("start by deactivated technician: got %v, want ErrTechnicianUnavailable", err)
	}
}

func TestAssign_LosingWriteFailsOnTechnicianConstraint(t *testing.T) {
	svc, ledger, _ := newTestService()
	ctx := context.Background()

	techA := ledger.addTechnician("Ama")

	b1, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	b2, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:15", "Blood Sugar"))

	if _, err := svc.AssignTo(ctx, b1.ID, techA); err != nil {
		t.Fatalf("assign b1: %v", err)
	}

	// Replay the write a racing assignment would make after its active-job
	// read passed: the storage-level uniqueness on active technicians must
	// reject it.
	tech, err := ledger.TechnicianByID(ctx, techA)
	if err != nil {
		t.Fatalf("technician: %v", err)
	}
	raced, err := ledger.BookingByID(ctx, b2.ID)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if err := Assign(raced, tech); err != nil {
		t.Fatalf("state machine: %v", err)
	}
	if err := ledger.SaveBooking(ctx, raced); !errors.Is(err, ErrTechnicianUnavailable) {
		t.Fatalf("racing save: got %v, want ErrTechnicianUnavailable", err)
	}

	ids, _ := ledger.ActiveTechnicianIDs(ctx)
	if len(ids) != 1 {
		t.Errorf("active jobs for one technician = %d, want 1", len(ids))
	}
}

func TestCancelIfPending_LeavesStartedBookingsAlone(t *testing.T) {
	svc, ledger, _ := newTestService()
	ctx := context.Background()

	techID := ledger.addTechnician("Ama")
	techPrincipal := Principal{ID: techID, Role: RoleTechnician}

	b1, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	b2, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:15", "Blood Sugar"))

	// b2 is picked up between the sweep's scan and its cancel attempt.
	if _, _, err := svc.Start(ctx, techPrincipal, b2.ID, StartRequest{}); err != nil {
		t.Fatalf("start b2: %v", err)
	}

	cancelled, err := svc.CancelIfPending(ctx, b1.ID)
	if err != nil || !cancelled {
		t.Fatalf("cancel pending b1: cancelled=%v err=%v", cancelled, err)
	}

	cancelled, err = svc.CancelIfPending(ctx, b2.ID)
	if err != nil {
		t.Fatalf("cancel started b2: %v", err)
	}
	if cancelled {
		t.Error("started booking reported as cancelled")
	}
	admin := Principal{ID: uuid.New(), Role: RoleAdmin}
	got, _ := svc.Get(ctx, admin, b2.ID)
	if got.Status != models.StatusInProgress {
		t.Errorf("b2 status = %s, want in-progress preserved", got.Status)
	}
}

func TestComplete_DispatchesResult(t *testing.T) {
	svc, ledger, notifier := newTestService()
	ctx := context.Background()

	techID := ledger.addTechnician("Ama")
	techPrincipal := Principal{ID: techID, Role: RoleTechnician}

	b, _ := svc.Book(ctx, patient(), bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	svc.Start(ctx, techPrincipal, b.ID, StartRequest{})

	completed, err := svc.Complete(ctx, techPrincipal, b.ID, "5.2 mmol/L", "within range")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Result != "5.2 mmol/L" {
		t.Errorf("result = %q", completed.Result)
	}
	if len(notifier.results) != 1 {
		t.Error("result notification not dispatched")
	}

	if _, err := svc.Complete(ctx, techPrincipal, b.ID, "5.2 mmol/L", "within range"); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("second complete: got %v, want ErrAlreadyCompleted", err)
	}
	if len(notifier.results) != 1 {
		t.Error("duplicate completion must not re-send the result email")
	}

	// Starting a completed booking is an invalid transition.
	if _, _, err := svc.Start(ctx, techPrincipal, b.ID, StartRequest{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("start completed booking: got %v, want ErrInvalidTransition", err)
	}
}

func TestCancel_OwnershipAndTerminality(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := patient()

	b, _ := svc.Book(ctx, owner, bookingRequest("2024-06-01", "09:00", "Blood Sugar"))

	if _, err := svc.Cancel(ctx, patient(), b.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("cancel by stranger: got %v, want ErrUnauthorized", err)
	}

	admin := Principal{ID: uuid.New(), Role: RoleAdmin}
	if _, err := svc.Cancel(ctx, admin, b.ID); err != nil {
		t.Fatalf("cancel by admin: %v", err)
	}

	if _, err := svc.Cancel(ctx, owner, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel cancelled booking: got %v, want ErrInvalidTransition", err)
	}
}

func TestReschedule_SlotReCheck(t *testing.T) {
	svc, ledger, _ := newTestService()
	ctx := context.Background()
	owner := patient()

	b1, _ := svc.Book(ctx, owner, bookingRequest("2024-06-01", "09:00", "Blood Sugar"))
	svc.Book(ctx, patient(), bookingRequest("2024-06-01", "10:00", "Full Blood Count"))

	if _, err := svc.Reschedule(ctx, owner, b1.ID, UpdateRequest{ScheduledTime: "10:00"}); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("reschedule to taken slot: got %v, want ErrSlotConflict", err)
	}

	moved, err := svc.Reschedule(ctx, owner, b1.ID, UpdateRequest{ScheduledTime: "11:00"})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if *moved.ScheduledTime != "11:00" {
		t.Errorf("scheduled time = %s, want 11:00", *moved.ScheduledTime)
	}

	// Tests are frozen once a technician is assigned.
	ledger.addTechnician("Ama")
	if _, err := svc.AssignAuto(ctx, b1.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	_, err = svc.Reschedule(ctx, owner, b1.ID, UpdateRequest{TestType: []string{"COVID-19"}})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("change tests after assignment: got %v, want ErrInvalidTransition", err)
	}
}

func TestGet_Scoping(t *testing.T) {
	svc, ledger, _ := newTestService()
	ctx := context.Background()
	owner := patient()

	b, _ := svc.Book(ctx, owner, bookingRequest("2024-06-01", "09:00", "Blood Sugar"))

	if _, err := svc.Get(ctx, owner, b.ID); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := svc.Get(ctx, patient(), b.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger read: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Get(ctx, Principal{ID: uuid.New(), Role: RoleAdmin}, b.ID); err != nil {
		t.Errorf("admin read: %v", err)
	}

	techID := ledger.addTechnician("Ama")
	svc.AssignAuto(ctx, b.ID)
	if _, err := svc.Get(ctx, Principal{ID: techID, Role: RoleTechnician}, b.ID); err != nil {
		t.Errorf("assigned technician read: %v", err)
	}

	if _, err := svc.Get(ctx, owner, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}
