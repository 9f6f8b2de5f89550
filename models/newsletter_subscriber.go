package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NewsletterSubscriber struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	FullName             string     `gorm:"not null" json:"full_name"`
	Email                string     `gorm:"uniqueIndex;not null" json:"email"`
	FarmSize             string     `gorm:"not null" json:"farm_size"`
	Tips                 bool       `gorm:"default:false" json:"tips"`
	Market               bool       `gorm:"default:false" json:"market"`
	Offers               bool       `gorm:"default:false" json:"offers"`
	UnsubscribeTokenHash string     `json:"-"`
	UnsubscribedAt       *time.Time `gorm:"index" json:"unsubscribed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (s *NewsletterSubscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Active reports whether the subscriber still receives the newsletter.
func (s *NewsletterSubscriber) Active() bool {
	return s.UnsubscribedAt == nil
}
