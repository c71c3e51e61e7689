//go:generate mockery --name GroupRepository --output ./mocks --outpkg mocks --case=underscore
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
)

// GroupRepository はグループとメンバーシップを扱います。
type GroupRepository interface {
	Create(ctx context.Context, db *gorm.DB, group *model.Group) error
	FindByID(ctx context.Context, db *gorm.DB, groupID uuid.UUID) (*model.Group, error)
	AddMember(ctx context.Context, db *gorm.DB, membership *model.GroupMembership) error
	FindActiveMembership(ctx context.Context, db *gorm.DB, groupID, userID uuid.UUID) (*model.GroupMembership, error)
	// WeeklyXP は [from, to) の獲得XPをアクティブメンバーごとに集計します。XP降順、メール昇順。
	WeeklyXP(ctx context.Context, db *gorm.DB, groupID uuid.UUID, from, to time.Time) ([]model.LeaderboardRow, error)
}

type gormGroupRepository struct{}

func NewGormGroupRepository() GroupRepository {
	return &gormGroupRepository{}
}

func (r *gormGroupRepository) Create(ctx context.Context, db *gorm.DB, group *model.Group) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(group).Error; err != nil {
		logger.Error("Error creating group in DB", "error", err, "name", group.Name)
		return fmt.Errorf("gormGroupRepository.Create: %w", err)
	}
	return nil
}

func (r *gormGroupRepository) FindByID(ctx context.Context, db *gorm.DB, groupID uuid.UUID) (*model.Group, error) {
	logger := middleware.GetLogger(ctx)
	var group model.Group
	result := db.WithContext(ctx).Where("id = ?", groupID).First(&group)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding group by ID in DB", "error", result.Error, "group_id", groupID.String())
		return nil, fmt.Errorf("gormGroupRepository.FindByID: %w", result.Error)
	}
	return &group, nil
}

func (r *gormGroupRepository) AddMember(ctx context.Context, db *gorm.DB, membership *model.GroupMembership) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(membership).Error; err != nil {
		if isUniqueViolation(err) {
			logger.Warn("Duplicate membership", "group_id", membership.GroupID.String(), "user_id", membership.UserID.String())
			return model.ErrConflict
		}
		logger.Error("Error creating membership in DB", "error", err, "group_id", membership.GroupID.String())
		return fmt.Errorf("gormGroupRepository.AddMember: %w", err)
	}
	return nil
}

func (r *gormGroupRepository) FindActiveMembership(ctx context.Context, db *gorm.DB, groupID, userID uuid.UUID) (*model.GroupMembership, error) {
	logger := middleware.GetLogger(ctx)
	var m model.GroupMembership
	result := db.WithContext(ctx).
		Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, model.MembershipActive).
		First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding membership in DB", "error", result.Error,
			"group_id", groupID.String(),
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormGroupRepository.FindActiveMembership: %w", result.Error)
	}
	return &m, nil
}

func (r *gormGroupRepository) WeeklyXP(ctx context.Context, db *gorm.DB, groupID uuid.UUID, from, to time.Time) ([]model.LeaderboardRow, error) {
	logger := middleware.GetLogger(ctx)
	var rows []model.LeaderboardRow
	result := db.WithContext(ctx).
		Table("group_memberships AS m").
		Select("u.id AS user_id, u.email AS email, u.display_name AS display_name, COALESCE(SUM(r.xp_awarded), 0) AS xp").
		Joins("JOIN users u ON u.id = m.user_id").
		Joins("LEFT JOIN review_logs r ON r.user_id = m.user_id AND r.group_id = m.group_id AND r.reviewed_at >= ? AND r.reviewed_at < ?", from, to).
		Where("m.group_id = ? AND m.status = ?", groupID, model.MembershipActive).
		Group("u.id, u.email, u.display_name").
		Order("COALESCE(SUM(r.xp_awarded), 0) DESC, u.email ASC").
		Scan(&rows)
	if result.Error != nil {
		logger.Error("Error aggregating weekly xp in DB", "error", result.Error, "group_id", groupID.String())
		return nil, fmt.Errorf("gormGroupRepository.WeeklyXP: %w", result.Error)
	}
	return rows, nil
}
