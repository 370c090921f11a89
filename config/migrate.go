package config

import (
	"fmt"

	"github.com/bellapacxx/inzo-lotto/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the bot owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.RoundRecord{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
