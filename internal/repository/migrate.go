package repository

import (
	"fmt"

	"go_5_skill_sync/internal/model"

	"gorm.io/gorm"
)

// Models はマイグレーション対象のモデル一覧です。
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Group{},
		&model.GroupMembership{},
		&model.FlashcardSet{},
		&model.Flashcard{},
		&model.CardProgress{},
		&model.ReviewLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("repository.Migrate: %w", err)
	}
	return nil
}
