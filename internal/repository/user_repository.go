//go:generate mockery --name UserRepository --output ./mocks --outpkg mocks --case=underscore
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

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *model.User) error
	FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error)
	// FindByIDForUpdate は行ロック付きで取得します。トランザクション内で使うこと。
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*model.User, error)
	UpdateGamification(ctx context.Context, tx *gorm.DB, user *model.User) error
}

type gormUserRepository struct{}

func NewGormUserRepository() UserRepository {
	return &gormUserRepository{}
}

func (r *gormUserRepository) Create(ctx context.Context, db *gorm.DB, user *model.User) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			logger.Warn("Duplicate key error on create user", "error", err, "email", user.Email)
			return model.ErrConflict
		}
		logger.Error("Error creating user in DB", "error", err, "email", user.Email)
		return fmt.Errorf("gormUserRepository.Create: %w", err)
	}
	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error) {
	return r.first(ctx, db, "gormUserRepository.FindByID", "id = ?", userID)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error) {
	return r.first(ctx, db, "gormUserRepository.FindByEmail", "email = ?", email)
}

func (r *gormUserRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*model.User, error) {
	return r.first(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), "gormUserRepository.FindByIDForUpdate", "id = ?", userID)
}

func (r *gormUserRepository) first(ctx context.Context, db *gorm.DB, op string, query string, arg interface{}) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User
	result := db.WithContext(ctx).Where(query, arg).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding user in DB", "error", result.Error, "op", op, "arg", arg)
		return nil, fmt.Errorf("%s: %w", op, result.Error)
	}
	return &user, nil
}

func (r *gormUserRepository) UpdateGamification(ctx context.Context, tx *gorm.DB, user *model.User) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"xp":              user.XP,
		"level":           user.Level,
		"streak_count":    user.StreakCount,
		"last_study_date": user.LastStudyDate,
	})
	if result.Error != nil {
		logger.Error("Error updating user gamification in DB", "error", result.Error, "user_id", user.ID.String())
		return fmt.Errorf("gormUserRepository.UpdateGamification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
