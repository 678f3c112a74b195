package database

import (
	"greylog/internal/database/models"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Setting{},
		&models.IPLog{},
	)
}
