package database

import (
	"fmt"

	"farmstore-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultPostgresDSN = "host=localhost user=postgres password=postgres dbname=farmstore port=5432 sslmode=disable"

// Connect opens the relational database. driver is "postgres" or "sqlite";
// for sqlite dsn is a file path or ":memory:".
func Connect(driver, dsn string, quiet bool) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if quiet {
		cfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	switch driver {
	case "postgres":
		if dsn == "" {
			dsn = defaultPostgresDSN
		}
		return gorm.Open(postgres.Open(dsn), cfg)

	case "sqlite":
		if dsn == "" {
			dsn = "farmstore.db"
		}
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		// sqlite allows one writer; an in-memory database also lives on a
		// single connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.StorageEntry{},
		&models.NewsletterSubscriber{},
		&models.ContactRequest{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
