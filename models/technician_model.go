package models

import (
	"time"

	"github.com/google/uuid"
)

type Technician struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName    string    `gorm:"size:255;not null" json:"full_name"`
	Email       string    `gorm:"size:255;not null;unique" json:"email"`
	Password    string    `gorm:"size:255" json:"-"`
	Specialties []string  `gorm:"serializer:json" json:"specialties"`

	InvitationToken          *string    `gorm:"size:255" json:"-"`
	InvitationTokenExpiresAt *time.Time `json:"-"`

	// A technician cannot be assigned work until they accept their
	// invitation and set a password.
	IsActivated bool `gorm:"default:false" json:"is_activated"`
	IsAvailable bool `gorm:"default:true" json:"is_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
