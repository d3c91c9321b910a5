package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/memeboard/memeboard-backend/model"
	"github.com/memeboard/memeboard-backend/utils/config"
)

// GetDBConnection opens the postgres connection described by cfg.
func GetDBConnection(cfg config.Config) (*gorm.DB, error) {
	sslmode := "require"
	if cfg.DBName == "testing" {
		sslmode = "prefer"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBName,
		cfg.DBPort,
		sslmode,
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// AutoMigrate creates or updates every table of the content core.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Content{},
		&model.Thumbnail{},
		&model.Group{},
		&model.GroupMember{},
		&model.UserContentSave{},
		&model.UserContentLike{},
		&model.UserContentSeen{},
		&model.Deletion{},
		&model.Download{},
	)
}
