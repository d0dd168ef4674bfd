package models

import (
	"time"

	"github.com/google/uuid"
)

// LabReport records the generated PDF result report for a completed booking.
type LabReport struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID `gorm:"not null;unique" json:"booking_id"`
	PatientID uuid.UUID `gorm:"not null;index" json:"patient_id"`
	ReportURL string    `gorm:"size:255;not null" json:"report_url"`

	Booking LabTestBooking `gorm:"foreignkey:BookingID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
