package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DueSelector は復習期限が来たカードを選び、初めてのセットでは進捗を初期作成します。
type DueSelector struct {
	progRepo     repository.ProgressRepository
	cardRepo     repository.FlashcardRepository
	seedBatchMin int
}

func NewDueSelector(progRepo repository.ProgressRepository, cardRepo repository.FlashcardRepository, seedBatchMin int) *DueSelector {
	return &DueSelector{progRepo: progRepo, cardRepo: cardRepo, seedBatchMin: seedBatchMin}
}

// SelectDue は next_due_at の早い順に最大 limit 件を返します。
// 期限切れが無く、このセットの進捗が1件も無い場合だけ、先頭 max(seedBatchMin, limit) 枚を初期化して取り直します。
func (d *DueSelector) SelectDue(ctx context.Context, db *gorm.DB, userID, setID uuid.UUID, limit int, now time.Time) ([]*model.CardProgress, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID.String(), "set_id", setID.String())

	due, err := d.progRepo.FindDueBySet(ctx, db, userID, setID, now, limit)
	if err != nil {
		return nil, err
	}
	if len(due) > 0 {
		return due, nil
	}

	existing, err := d.progRepo.CountBySet(ctx, db, userID, setID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		logger.Debug("No due cards", "existing_progress", existing)
		return due, nil
	}

	seeded, err := d.seed(ctx, db, userID, setID, max(d.seedBatchMin, limit), now)
	if err != nil {
		return nil, err
	}
	logger.Info("Seeded progress for first-time learner", "seeded", seeded)

	return d.progRepo.FindDueBySet(ctx, db, userID, setID, now, limit)
}

// seed は1件ずつ作成し、既に作られていた組み合わせは飛ばします。一括ではないので途中で失敗しても次回に補完されます。
func (d *DueSelector) seed(ctx context.Context, db *gorm.DB, userID, setID uuid.UUID, batch int, now time.Time) (int, error) {
	cards, _, err := d.cardRepo.FindBySetID(ctx, db, setID, 1, batch)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, card := range cards {
		p := model.NewCardProgress(userID, card.ID, now)
		if err := d.progRepo.Create(ctx, db, p); err != nil {
			if errors.Is(err, model.ErrConflict) {
				continue
			}
			return created, fmt.Errorf("DueSelector.seed: %w", err)
		}
		created++
	}
	return created, nil
}
