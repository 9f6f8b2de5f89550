package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactRequest is an order inquiry left through the contact form. A person
// at the shop reads it and follows up by phone.
type ContactRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SessionID string    `gorm:"size:64;index" json:"session_id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `gorm:"not null" json:"phone"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *ContactRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
