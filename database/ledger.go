package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labsync/labsync/models"
	"github.com/labsync/labsync/scheduling"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormLedger backs scheduling.Ledger with Postgres. Atomically serializes the
// check-then-write of each scheduling operation with a transaction plus
// FOR UPDATE row locks; the partial unique indexes on active (date, slot)
// pairs and on active technician ids created in Migrate catch whatever a
// lock cannot.
type gormLedger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) scheduling.Ledger {
	return &gormLedger{db: db}
}

func (l *gormLedger) Atomically(ctx context.Context, fn func(tx scheduling.Ledger) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedger{db: tx})
	})
}

func (l *gormLedger) CreateBooking(ctx context.Context, b *models.LabTestBooking) error {
	err := l.db.WithContext(ctx).Create(b).Error
	return translateBookingErr(err)
}

func (l *gormLedger) SaveBooking(ctx context.Context, b *models.LabTestBooking) error {
	err := l.db.WithContext(ctx).Save(b).Error
	return translateBookingErr(err)
}

func (l *gormLedger) BookingByID(ctx context.Context, id uuid.UUID) (*models.LabTestBooking, error) {
	var b models.LabTestBooking
	err := l.db.WithContext(ctx).Preload("Technician").First(&b, "id = ?", id).Error
	if err != nil {
		return nil, translateBookingErr(err)
	}
	return &b, nil
}

func (l *gormLedger) BookingForUpdate(ctx context.Context, id uuid.UUID) (*models.LabTestBooking, error) {
	var b models.LabTestBooking
	err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, translateBookingErr(err)
	}
	return &b, nil
}

func (l *gormLedger) Bookings(ctx context.Context, f scheduling.Filter) ([]models.LabTestBooking, error) {
	q := l.db.WithContext(ctx).Model(&models.LabTestBooking{}).Preload("Technician")

	if f.BookedBy != nil {
		q = q.Where("booked_by = ?", *f.BookedBy)
	}
	if f.TechnicianID != nil {
		q = q.Where("technician_id = ?", *f.TechnicianID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Date != "" {
		q = q.Where("scheduled_date = ?", f.Date)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}

	var bookings []models.LabTestBooking
	err := q.Order("scheduled_date asc, scheduled_time asc").Find(&bookings).Error
	return bookings, err
}

func (l *gormLedger) SlotTaken(ctx context.Context, date, slot string, exclude uuid.UUID) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.LabTestBooking{}).
		Where("scheduled_date = ? AND scheduled_time = ?", date, slot).
		Where("status IN ?", scheduling.ActiveStatuses).
		Where("id <> ?", exclude).
		Count(&count).Error
	return count > 0, err
}

func (l *gormLedger) TakenTimes(ctx context.Context, date string) ([]string, error) {
	var times []string
	err := l.db.WithContext(ctx).Model(&models.LabTestBooking{}).
		Where("scheduled_date = ? AND scheduled_time IS NOT NULL", date).
		Where("status IN ?", scheduling.ActiveStatuses).
		Order("scheduled_time asc").
		Pluck("scheduled_time", &times).Error
	return times, err
}

func (l *gormLedger) Technicians(ctx context.Context) ([]models.Technician, error) {
	var techs []models.Technician
	err := l.db.WithContext(ctx).Order("created_at asc, id asc").Find(&techs).Error
	return techs, err
}

func (l *gormLedger) TechnicianByID(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	var t models.Technician
	err := l.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduling.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (l *gormLedger) ActiveTechnicianIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := l.db.WithContext(ctx).Model(&models.LabTestBooking{}).
		Where("technician_id IS NOT NULL").
		Where("status IN ?", []string{models.StatusAssigned, models.StatusInProgress}).
		Distinct().
		Pluck("technician_id", &ids).Error
	return ids, err
}

func (l *gormLedger) HasActiveJob(ctx context.Context, technicianID uuid.UUID) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.LabTestBooking{}).
		Where("technician_id = ?", technicianID).
		Where("status IN ?", []string{models.StatusAssigned, models.StatusInProgress}).
		Count(&count).Error
	return count > 0, err
}

func (l *gormLedger) CreateTask(ctx context.Context, task *models.LabTask) error {
	return l.db.WithContext(ctx).Create(task).Error
}

func translateBookingErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return scheduling.ErrNotFound
	}

	// A unique violation means a concurrent writer won a contested resource;
	// the constraint that fired tells us which one.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "idx_lab_test_bookings_active_technician" {
			return scheduling.ErrTechnicianUnavailable
		}
		return scheduling.ErrSlotConflict
	}
	return err
}
