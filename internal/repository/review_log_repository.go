//go:generate mockery --name ReviewLogRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"
	"time"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, log *model.ReviewLog) error
	// FindByUserBetween は [from, to) のログを古い順に返します。
	FindByUserBetween(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*model.ReviewLog, error)
	DeleteByFlashcard(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID) error
}

type gormReviewLogRepository struct{}

func NewGormReviewLogRepository() ReviewLogRepository {
	return &gormReviewLogRepository{}
}

func (r *gormReviewLogRepository) Create(ctx context.Context, tx *gorm.DB, log *model.ReviewLog) error {
	if err := tx.WithContext(ctx).Create(log).Error; err != nil {
		middleware.GetLogger(ctx).Error("Error creating review log in DB", "error", err,
			"user_id", log.UserID.String(),
			"flashcard_id", log.FlashcardID.String(),
		)
		return fmt.Errorf("gormReviewLogRepository.Create: %w", err)
	}
	return nil
}

func (r *gormReviewLogRepository) FindByUserBetween(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*model.ReviewLog, error) {
	var logs []*model.ReviewLog
	result := db.WithContext(ctx).
		Where("user_id = ? AND reviewed_at >= ? AND reviewed_at < ?", userID, from, to).
		Order("reviewed_at ASC").
		Find(&logs)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error finding review logs in DB", "error", result.Error, "user_id", userID.String())
		return nil, fmt.Errorf("gormReviewLogRepository.FindByUserBetween: %w", result.Error)
	}
	return logs, nil
}

func (r *gormReviewLogRepository) DeleteByFlashcard(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID) error {
	if err := tx.WithContext(ctx).Where("flashcard_id = ?", flashcardID).Delete(&model.ReviewLog{}).Error; err != nil {
		middleware.GetLogger(ctx).Error("Error deleting review logs in DB", "error", err, "flashcard_id", flashcardID.String())
		return fmt.Errorf("gormReviewLogRepository.DeleteByFlashcard: %w", err)
	}
	return nil
}
