//go:generate mockery --name FlashcardRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FlashcardRepository interface {
	Create(ctx context.Context, tx *gorm.DB, card *model.Flashcard) error
	FindByID(ctx context.Context, db *gorm.DB, cardID uuid.UUID) (*model.Flashcard, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (*model.Flashcard, error)
	// FindBySetID は作成順で1ページ分を返します。page は1始まり。
	FindBySetID(ctx context.Context, db *gorm.DB, setID uuid.UUID, page, size int) ([]*model.Flashcard, int64, error)
	UpdateDifficulty(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, difficulty int) error
	UpdateOptions(ctx context.Context, db *gorm.DB, cardID uuid.UUID, options []string, correctIndex int) error
	IncrementUsage(ctx context.Context, db *gorm.DB, cardID uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) error
}

type gormFlashcardRepository struct{}

func NewGormFlashcardRepository() FlashcardRepository {
	return &gormFlashcardRepository{}
}

func (r *gormFlashcardRepository) Create(ctx context.Context, tx *gorm.DB, card *model.Flashcard) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(card).Error; err != nil {
		logger.Error("Error creating flashcard in DB",
			"error", err,
			"set_id", card.SetID.String(),
		)
		return fmt.Errorf("gormFlashcardRepository.Create: %w", err)
	}
	return nil
}

func (r *gormFlashcardRepository) FindByID(ctx context.Context, db *gorm.DB, cardID uuid.UUID) (*model.Flashcard, error) {
	return r.findByID(ctx, db, cardID, "gormFlashcardRepository.FindByID")
}

func (r *gormFlashcardRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (*model.Flashcard, error) {
	return r.findByID(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), cardID, "gormFlashcardRepository.FindByIDForUpdate")
}

func (r *gormFlashcardRepository) findByID(ctx context.Context, db *gorm.DB, cardID uuid.UUID, op string) (*model.Flashcard, error) {
	logger := middleware.GetLogger(ctx)
	var card model.Flashcard
	result := db.WithContext(ctx).Where("id = ?", cardID).First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding flashcard by ID in DB", "error", result.Error, "flashcard_id", cardID.String())
		return nil, fmt.Errorf("%s: %w", op, result.Error)
	}
	return &card, nil
}

func (r *gormFlashcardRepository) FindBySetID(ctx context.Context, db *gorm.DB, setID uuid.UUID, page, size int) ([]*model.Flashcard, int64, error) {
	logger := middleware.GetLogger(ctx)
	if page < 1 {
		page = 1
	}

	var total int64
	if err := db.WithContext(ctx).Model(&model.Flashcard{}).Where("set_id = ?", setID).Count(&total).Error; err != nil {
		logger.Error("Error counting flashcards in DB", "error", err, "set_id", setID.String())
		return nil, 0, fmt.Errorf("gormFlashcardRepository.FindBySetID: %w", err)
	}

	var cards []*model.Flashcard
	result := db.WithContext(ctx).
		Where("set_id = ?", setID).
		Order("created_at ASC, id ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&cards)
	if result.Error != nil {
		logger.Error("Error finding flashcards by set in DB", "error", result.Error, "set_id", setID.String())
		return nil, 0, fmt.Errorf("gormFlashcardRepository.FindBySetID: %w", result.Error)
	}
	return cards, total, nil
}

func (r *gormFlashcardRepository) UpdateDifficulty(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, difficulty int) error {
	return r.update(ctx, tx, cardID, "gormFlashcardRepository.UpdateDifficulty", map[string]interface{}{
		"difficulty": difficulty,
	})
}

func (r *gormFlashcardRepository) UpdateOptions(ctx context.Context, db *gorm.DB, cardID uuid.UUID, options []string, correctIndex int) error {
	// serializer:json を通すため map ではなく構造体で更新する
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.Flashcard{ID: cardID}).
		Select("Options", "CorrectOptionIndex").
		Updates(&model.Flashcard{Options: options, CorrectOptionIndex: &correctIndex})
	if result.Error != nil {
		logger.Error("Error updating flashcard options in DB", "error", result.Error, "flashcard_id", cardID.String())
		return fmt.Errorf("gormFlashcardRepository.UpdateOptions: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormFlashcardRepository) IncrementUsage(ctx context.Context, db *gorm.DB, cardID uuid.UUID) error {
	return r.update(ctx, db, cardID, "gormFlashcardRepository.IncrementUsage", map[string]interface{}{
		"usage_count": gorm.Expr("usage_count + ?", 1),
	})
}

func (r *gormFlashcardRepository) update(ctx context.Context, db *gorm.DB, cardID uuid.UUID, op string, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.Flashcard{}).Where("id = ?", cardID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating flashcard in DB", "error", result.Error, "op", op, "flashcard_id", cardID.String())
		return fmt.Errorf("%s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormFlashcardRepository) Delete(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("id = ?", cardID).Delete(&model.Flashcard{})
	if result.Error != nil {
		logger.Error("Error deleting flashcard in DB", "error", result.Error, "flashcard_id", cardID.String())
		return fmt.Errorf("gormFlashcardRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
