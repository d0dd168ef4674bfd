package models

import (
	"time"

	"github.com/google/uuid"
)

type TestDetails struct {
	Description       string   `gorm:"type:text" json:"description"`
	Instructions      string   `gorm:"type:text" json:"instructions"`
	RequiredEquipment []string `gorm:"serializer:json" json:"required_equipment"`
}

type TaskInfo struct {
	RequestedBy       string    `gorm:"size:255" json:"requested_by"`
	RequestedDate     time.Time `json:"requested_date"`
	EstimatedDuration string    `gorm:"size:20" json:"estimated_duration"`
}

// LabTask is the work record a technician opens when they start an
// appointment.
type LabTask struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID    uuid.UUID `gorm:"not null;index" json:"booking_id"`
	TechnicianID uuid.UUID `gorm:"not null;index" json:"technician_id"`

	TestDetails TestDetails `gorm:"embedded;embeddedPrefix:test_" json:"test_details"`
	TaskInfo    TaskInfo    `gorm:"embedded;embeddedPrefix:task_" json:"task_info"`

	Booking LabTestBooking `gorm:"foreignkey:BookingID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
