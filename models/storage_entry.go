package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StorageEntry is one durable key/value slot owned by a visitor namespace.
// A slot is always overwritten in full.
type StorageEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Namespace string    `gorm:"size:64;not null;uniqueIndex:idx_storage_entries_slot" json:"namespace"`
	Key       string    `gorm:"column:slot_key;size:128;not null;uniqueIndex:idx_storage_entries_slot" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *StorageEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
