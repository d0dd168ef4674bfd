package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type PatientDetails struct {
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
	Gender   string `gorm:"size:10" json:"gender"`
	Contact  string `gorm:"size:30" json:"contact"`
	Email    string `gorm:"size:255" json:"email"`
}

type LabTestBooking struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookedBy uuid.UUID `gorm:"not null;index" json:"booked_by"`

	// Snapshot taken at booking time, deliberately not kept in sync with
	// later account updates.
	PatientDetails PatientDetails `gorm:"embedded;embeddedPrefix:patient_" json:"patient_details"`

	TestType []string `gorm:"serializer:json;not null" json:"test_type"`

	ScheduledDate string  `gorm:"size:10;not null;index" json:"scheduled_date"`
	ScheduledTime *string `gorm:"size:5" json:"scheduled_time"`

	Priority          string `gorm:"size:10;not null;default:'normal'" json:"priority"`
	EstimatedDuration string `gorm:"size:20" json:"estimated_duration"`

	TechnicianID *uuid.UUID  `gorm:"index" json:"technician_id"`
	Technician   *Technician `gorm:"foreignkey:TechnicianID" json:"technician,omitempty"`

	Status string `gorm:"size:20;not null;default:'pending'" json:"status"`

	Result string `gorm:"type:text" json:"result"`
	Notes  string `gorm:"type:text" json:"notes"`

	Patient User `gorm:"foreignkey:BookedBy" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
