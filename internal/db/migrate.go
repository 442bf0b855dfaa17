package db

import (
	"fmt"

	"github.com/frontdeskhq/frontdesk/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Conversation{},
		&models.Message{},
		&models.MoodEntry{},
		&models.ConversationSummary{},
		&models.Product{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedProducts inserts catalog rows that don't already exist, matched by
// name. Used by fd db init to bootstrap a demo catalog.
func SeedProducts(db *gorm.DB, products []models.Product) error {
	for _, p := range products {
		var count int64
		if err := db.Model(&models.Product{}).Where("name = ?", p.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("db: seed product %q: %w", p.Name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("db: seed product %q: %w", p.Name, err)
		}
	}
	return nil
}
