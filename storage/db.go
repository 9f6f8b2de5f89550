package storage

import (
	"context"
	"errors"
	"fmt"

	"farmstore-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBBackend stores slots as rows of the storage_entries table.
type DBBackend struct {
	DB *gorm.DB
}

func NewDBBackend(db *gorm.DB) *DBBackend {
	return &DBBackend{DB: db}
}

func (b *DBBackend) Slot(namespace, key string) Slot {
	return &dbSlot{db: b.DB, namespace: namespace, key: key}
}

type dbSlot struct {
	db        *gorm.DB
	namespace string
	key       string
}

func (s *dbSlot) Load(ctx context.Context) ([]byte, error) {
	var entry models.StorageEntry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND slot_key = ?", s.namespace, s.key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s/%s: %w", s.namespace, s.key, err)
	}
	return []byte(entry.Value), nil
}

func (s *dbSlot) Save(ctx context.Context, data []byte) error {
	entry := models.StorageEntry{
		Namespace: s.namespace,
		Key:       s.key,
		Value:     string(data),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("save slot %s/%s: %w", s.namespace, s.key, err)
	}
	return nil
}
