package database

import (
	"fmt"

	"reelroom/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models,
// in dependency order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
	}
}

// Migrate brings the schema up to date with PersistentModels.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	// Rows written before the search columns existed.
	err := db.Model(&models.User{}).
		Where("username_fold = '' OR username_fold IS NULL").
		UpdateColumns(map[string]interface{}{
			"username_fold":  gorm.Expr("LOWER(username)"),
			"full_name_fold": gorm.Expr("LOWER(full_name)"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to backfill search columns: %w", err)
	}
	return nil
}
