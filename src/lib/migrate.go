package lib

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/theleywin/Backend-Meme-Nest/src/models"
	"github.com/theleywin/Backend-Meme-Nest/src/search"
)

// AutoMigrate creates the schema and the full-text index next to it.
func AutoMigrate(db *gorm.DB, index search.Index) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := index.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate search index: %w", err)
	}

	log.Println("Database migration completed!")
	return nil
}
