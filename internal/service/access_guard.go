package service

import (
	"context"
	"errors"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessGuard は呼び出し元ユーザーの解決と、グループメンバーかどうかの認可をまとめたものです。
// PENDING のメンバーシップでは認可しません。
type AccessGuard struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	setRepo   repository.SetRepository
}

func NewAccessGuard(userRepo repository.UserRepository, groupRepo repository.GroupRepository, setRepo repository.SetRepository) *AccessGuard {
	return &AccessGuard{userRepo: userRepo, groupRepo: groupRepo, setRepo: setRepo}
}

// ResolveCaller はメールアドレスからユーザーを取得します。
func (g *AccessGuard) ResolveCaller(ctx context.Context, db *gorm.DB, email string) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	user, err := g.userRepo.FindByEmail(ctx, db, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Caller not found", "email", email)
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to resolve caller", "error", err, "email", email)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザー情報の取得に失敗しました。", "", err)
	}
	return user, nil
}

// EnsureMemberOfSet はセットの存在と、ユーザーがその所属グループのメンバーであることを確認します。
func (g *AccessGuard) EnsureMemberOfSet(ctx context.Context, db *gorm.DB, setID, userID uuid.UUID) (*model.FlashcardSet, error) {
	logger := middleware.GetLogger(ctx)
	set, err := g.setRepo.FindByID(ctx, db, setID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Flashcard set not found", "set_id", setID.String())
			return nil, model.NewAppError("SET_NOT_FOUND", "セットが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to find flashcard set", "error", err, "set_id", setID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "セットの取得に失敗しました。", "", err)
	}
	if err := g.checkMembership(ctx, db, set.GroupID, userID); err != nil {
		return nil, err
	}
	return set, nil
}

// EnsureMemberOfGroup はグループの存在とメンバーシップを確認します。
func (g *AccessGuard) EnsureMemberOfGroup(ctx context.Context, db *gorm.DB, groupID, userID uuid.UUID) (*model.Group, error) {
	logger := middleware.GetLogger(ctx)
	group, err := g.groupRepo.FindByID(ctx, db, groupID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Group not found", "group_id", groupID.String())
			return nil, model.NewAppError("GROUP_NOT_FOUND", "グループが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to find group", "error", err, "group_id", groupID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "グループの取得に失敗しました。", "", err)
	}
	if err := g.checkMembership(ctx, db, groupID, userID); err != nil {
		return nil, err
	}
	return group, nil
}

func (g *AccessGuard) checkMembership(ctx context.Context, db *gorm.DB, groupID, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	_, err := g.groupRepo.FindActiveMembership(ctx, db, groupID, userID)
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNotFound) {
		logger.Warn("Caller is not an active member of the group", "group_id", groupID.String(), "user_id", userID.String())
		return model.NewAppError("NOT_GROUP_MEMBER", "このグループへのアクセス権がありません。", "", model.ErrForbidden)
	}
	logger.Error("Failed to check membership", "error", err, "group_id", groupID.String())
	return model.NewAppError("INTERNAL_SERVER_ERROR", "権限の確認に失敗しました。", "", err)
}
