// internal/service/flashcard_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/repository"
	"go_5_skill_sync/internal/srs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type FlashcardService interface {
	CreateFlashcard(ctx context.Context, email string, setID uuid.UUID, req *model.CreateFlashcardRequest) (*model.FlashcardResponse, error)
	ListFlashcards(ctx context.Context, email string, setID uuid.UUID, page, size int) (*model.FlashcardPage, error)
	DeleteFlashcard(ctx context.Context, email string, flashcardID uuid.UUID) error
}

type flashcardService struct {
	db       *gorm.DB // トランザクション用にDB接続を持つ
	guard    *AccessGuard
	cardRepo repository.FlashcardRepository
	progRepo repository.ProgressRepository
	logRepo  repository.ReviewLogRepository
}

func NewFlashcardService(db *gorm.DB, guard *AccessGuard, cardRepo repository.FlashcardRepository, progRepo repository.ProgressRepository, logRepo repository.ReviewLogRepository) FlashcardService {
	return &flashcardService{
		db:       db,
		guard:    guard,
		cardRepo: cardRepo,
		progRepo: progRepo,
		logRepo:  logRepo,
	}
}

func (s *flashcardService) CreateFlashcard(ctx context.Context, email string, setID uuid.UUID, req *model.CreateFlashcardRequest) (*model.FlashcardResponse, error) {
	logger := middleware.GetLogger(ctx).With("set_id", setID.String())

	question := sanitizeText(req.Question)
	answer := sanitizeText(req.Answer)
	if question == "" || answer == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "問題文と答えは必須です。", "question", model.ErrInvalidInput)
	}

	var options []string
	var correct *int
	if len(req.Options) > 0 {
		if req.CorrectOptionIndex == nil || *req.CorrectOptionIndex >= len(req.Options) {
			return nil, model.NewAppError("INVALID_CORRECT_OPTION", "正解の選択肢番号が範囲外です。", "correct_option_index", model.ErrInvalidInput)
		}
		options = make([]string, len(req.Options))
		for i, o := range req.Options {
			options[i] = sanitizeText(o)
		}
		idx := *req.CorrectOptionIndex
		correct = &idx
	}

	difficulty := srs.DefaultDifficulty
	if req.Difficulty != nil {
		difficulty = *req.Difficulty
	}

	user, err := s.guard.ResolveCaller(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	set, err := s.guard.EnsureMemberOfSet(ctx, s.db, setID, user.ID)
	if err != nil {
		return nil, err
	}

	card := &model.Flashcard{
		ID:                 uuid.New(),
		SetID:              set.ID,
		GroupID:            set.GroupID,
		CreatedByID:        user.ID,
		Question:           question,
		Answer:             answer,
		Explanation:        sanitizeText(req.Explanation),
		Difficulty:         difficulty,
		Tags:               normalizeTags(req.Tags),
		Options:            options,
		CorrectOptionIndex: correct,
	}
	if err := s.cardRepo.Create(ctx, s.db, card); err != nil {
		logger.Error("Failed to create flashcard", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カードの作成に失敗しました。", "", err)
	}

	logger.Info("Flashcard created", "flashcard_id", card.ID.String(), "user_id", user.ID.String())
	return model.NewFlashcardResponse(card), nil
}

func (s *flashcardService) ListFlashcards(ctx context.Context, email string, setID uuid.UUID, page, size int) (*model.FlashcardPage, error) {
	if page < 1 {
		page = 1
	}
	if size == 0 {
		size = defaultPageSize
	}
	if size < 1 || size > maxPageSize {
		return nil, model.NewAppError("INVALID_PAGE_SIZE", "sizeは1から100の範囲で指定してください。", "size", model.ErrInvalidInput)
	}

	user, err := s.guard.ResolveCaller(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.EnsureMemberOfSet(ctx, s.db, setID, user.ID); err != nil {
		return nil, err
	}

	cards, total, err := s.cardRepo.FindBySetID(ctx, s.db, setID, page, size)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list flashcards", "error", err, "set_id", setID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カード一覧の取得に失敗しました。", "", err)
	}

	items := make([]*model.FlashcardResponse, 0, len(cards))
	for _, c := range cards {
		items = append(items, model.NewFlashcardResponse(c))
	}
	return &model.FlashcardPage{Items: items, Page: page, Size: size, Total: total}, nil
}

// DeleteFlashcard はカードと、それに紐づく進捗とログをまとめて削除します。
func (s *flashcardService) DeleteFlashcard(ctx context.Context, email string, flashcardID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("flashcard_id", flashcardID.String())

	user, err := s.guard.ResolveCaller(ctx, s.db, email)
	if err != nil {
		return err
	}

	card, err := s.cardRepo.FindByID(ctx, s.db, flashcardID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("FLASHCARD_NOT_FOUND", "カードが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to find flashcard", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの取得に失敗しました。", "", err)
	}
	if _, err := s.guard.EnsureMemberOfGroup(ctx, s.db, card.GroupID, user.ID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 進捗
		if err := s.progRepo.DeleteByFlashcard(ctx, tx, card.ID); err != nil {
			return err
		}
		// 2. 復習ログ
		if err := s.logRepo.DeleteByFlashcard(ctx, tx, card.ID); err != nil {
			return err
		}
		// 3. カード本体
		return s.cardRepo.Delete(ctx, tx, card.ID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("FLASHCARD_NOT_FOUND", "カードが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Transaction failed for DeleteFlashcard", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの削除に失敗しました。", "", err)
	}

	logger.Info("Flashcard deleted", "user_id", user.ID.String())
	return nil
}

// normalizeTags は小文字化して空と重複を取り除きます。順序は最初の出現順。
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := strings.ToLower(sanitizeText(t))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
