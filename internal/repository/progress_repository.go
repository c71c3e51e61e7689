//go:generate mockery --name ProgressRepository --output ./mocks --outpkg mocks --case=underscore
// internal/repository/progress_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	// Create は (user_id, flashcard_id) が既に存在する場合 model.ErrConflict を返します。
	// ネストしたトランザクション (SAVEPOINT) で実行するので、違反後も外側の tx は使えます。
	Create(ctx context.Context, tx *gorm.DB, progress *model.CardProgress) error
	FindByUserAndCard(ctx context.Context, db *gorm.DB, userID, flashcardID uuid.UUID) (*model.CardProgress, error)
	FindByUserAndCardForUpdate(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID) (*model.CardProgress, error)
	Update(ctx context.Context, tx *gorm.DB, progress *model.CardProgress) error
	// FindDueBySet は next_due_at <= now の行を期限の早い順に返します。Flashcard は Preload 済み。
	FindDueBySet(ctx context.Context, db *gorm.DB, userID, setID uuid.UUID, now time.Time, limit int) ([]*model.CardProgress, error)
	CountBySet(ctx context.Context, db *gorm.DB, userID, setID uuid.UUID) (int64, error)
	CountMastered(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error)
	CountDueBefore(ctx context.Context, db *gorm.DB, userID uuid.UUID, before time.Time) (int64, error)
	DeleteByFlashcard(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID) error
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) Create(ctx context.Context, tx *gorm.DB, progress *model.CardProgress) error {
	logger := middleware.GetLogger(ctx)
	err := tx.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return sp.Create(progress).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			logger.Debug("Progress already exists",
				"user_id", progress.UserID.String(),
				"flashcard_id", progress.FlashcardID.String(),
			)
			return model.ErrConflict
		}
		logger.Error("Error creating progress in DB", "error", err,
			"user_id", progress.UserID.String(),
			"flashcard_id", progress.FlashcardID.String(),
		)
		return fmt.Errorf("gormProgressRepository.Create: %w", err)
	}
	return nil
}

func (r *gormProgressRepository) FindByUserAndCard(ctx context.Context, db *gorm.DB, userID, flashcardID uuid.UUID) (*model.CardProgress, error) {
	return r.findByUserAndCard(ctx, db, userID, flashcardID, "gormProgressRepository.FindByUserAndCard")
}

func (r *gormProgressRepository) FindByUserAndCardForUpdate(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID) (*model.CardProgress, error) {
	return r.findByUserAndCard(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID, flashcardID, "gormProgressRepository.FindByUserAndCardForUpdate")
}

func (r *gormProgressRepository) findByUserAndCard(ctx context.Context, db *gorm.DB, userID, flashcardID uuid.UUID, op string) (*model.CardProgress, error) {
	logger := middleware.GetLogger(ctx)
	var progress model.CardProgress
	result := db.WithContext(ctx).Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding progress in DB", "error", result.Error,
			"user_id", userID.String(),
			"flashcard_id", flashcardID.String(),
		)
		return nil, fmt.Errorf("%s: %w", op, result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) Update(ctx context.Context, tx *gorm.DB, progress *model.CardProgress) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(progress).
		Select("Ease", "Repetitions", "IntervalDays", "ConsecutiveCorrect", "Mastered", "NextDueAt", "LastReviewedAt", "UpdatedAt").
		Updates(progress)
	if result.Error != nil {
		logger.Error("Error updating progress in DB", "error", result.Error, "progress_id", progress.ID.String())
		return fmt.Errorf("gormProgressRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormProgressRepository) FindDueBySet(ctx context.Context, db *gorm.DB, userID, setID uuid.UUID, now time.Time, limit int) ([]*model.CardProgress, error) {
	logger := middleware.GetLogger(ctx)
	var progresses []*model.CardProgress
	result := db.WithContext(ctx).
		Preload("Flashcard").
		Joins("JOIN flashcards ON flashcards.id = user_card_progress.flashcard_id").
		Where("user_card_progress.user_id = ? AND flashcards.set_id = ? AND user_card_progress.next_due_at <= ?", userID, setID, now).
		Order("user_card_progress.next_due_at ASC, user_card_progress.id ASC").
		Limit(limit).
		Find(&progresses)
	if result.Error != nil {
		logger.Error("Error finding due progress in DB", "error", result.Error,
			"user_id", userID.String(),
			"set_id", setID.String(),
		)
		return nil, fmt.Errorf("gormProgressRepository.FindDueBySet: %w", result.Error)
	}
	return progresses, nil
}

func (r *gormProgressRepository) CountBySet(ctx context.Context, db *gorm.DB, userID, setID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.CardProgress{}).
		Joins("JOIN flashcards ON flashcards.id = user_card_progress.flashcard_id").
		Where("user_card_progress.user_id = ? AND flashcards.set_id = ?", userID, setID).
		Count(&count).Error
	if err != nil {
		middleware.GetLogger(ctx).Error("Error counting progress by set in DB", "error", err, "set_id", setID.String())
		return 0, fmt.Errorf("gormProgressRepository.CountBySet: %w", err)
	}
	return count, nil
}

func (r *gormProgressRepository) CountMastered(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.CardProgress{}).
		Where("user_id = ? AND mastered = ?", userID, true).
		Count(&count).Error
	if err != nil {
		middleware.GetLogger(ctx).Error("Error counting mastered progress in DB", "error", err, "user_id", userID.String())
		return 0, fmt.Errorf("gormProgressRepository.CountMastered: %w", err)
	}
	return count, nil
}

func (r *gormProgressRepository) CountDueBefore(ctx context.Context, db *gorm.DB, userID uuid.UUID, before time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.CardProgress{}).
		Where("user_id = ? AND next_due_at <= ?", userID, before).
		Count(&count).Error
	if err != nil {
		middleware.GetLogger(ctx).Error("Error counting due progress in DB", "error", err, "user_id", userID.String())
		return 0, fmt.Errorf("gormProgressRepository.CountDueBefore: %w", err)
	}
	return count, nil
}

func (r *gormProgressRepository) DeleteByFlashcard(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID) error {
	if err := tx.WithContext(ctx).Where("flashcard_id = ?", flashcardID).Delete(&model.CardProgress{}).Error; err != nil {
		middleware.GetLogger(ctx).Error("Error deleting progress by flashcard in DB", "error", err, "flashcard_id", flashcardID.String())
		return fmt.Errorf("gormProgressRepository.DeleteByFlashcard: %w", err)
	}
	return nil
}
