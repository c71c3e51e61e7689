//go:generate mockery --name SetRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SetRepository interface {
	Create(ctx context.Context, db *gorm.DB, set *model.FlashcardSet) error
	FindByID(ctx context.Context, db *gorm.DB, setID uuid.UUID) (*model.FlashcardSet, error)
}

type gormSetRepository struct{}

func NewGormSetRepository() SetRepository {
	return &gormSetRepository{}
}

func (r *gormSetRepository) Create(ctx context.Context, db *gorm.DB, set *model.FlashcardSet) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(set).Error; err != nil {
		logger.Error("Error creating flashcard set in DB", "error", err, "group_id", set.GroupID.String())
		return fmt.Errorf("gormSetRepository.Create: %w", err)
	}
	return nil
}

func (r *gormSetRepository) FindByID(ctx context.Context, db *gorm.DB, setID uuid.UUID) (*model.FlashcardSet, error) {
	logger := middleware.GetLogger(ctx)
	var set model.FlashcardSet
	result := db.WithContext(ctx).Where("id = ?", setID).First(&set)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding flashcard set by ID in DB", "error", result.Error, "set_id", setID.String())
		return nil, fmt.Errorf("gormSetRepository.FindByID: %w", result.Error)
	}
	return &set, nil
}
