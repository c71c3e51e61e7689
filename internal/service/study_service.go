// internal/service/study_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/repository"
	"go_5_skill_sync/internal/srs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudyService interface {
	ListDue(ctx context.Context, email string, setID uuid.UUID, limit int) ([]*model.DueCardResponse, error)
	SubmitReview(ctx context.Context, email string, setID, flashcardID uuid.UUID, req *model.SubmitReviewRequest) (*model.ReviewResultResponse, error)
}

type studyService struct {
	db        *gorm.DB
	guard     *AccessGuard
	selector  *DueSelector
	userRepo  repository.UserRepository
	cardRepo  repository.FlashcardRepository
	progRepo  repository.ProgressRepository
	logRepo   repository.ReviewLogRepository
	generator OptionGenerator
	cfg       *config.Config
	now       func() time.Time
}

func NewStudyService(
	db *gorm.DB,
	guard *AccessGuard,
	selector *DueSelector,
	userRepo repository.UserRepository,
	cardRepo repository.FlashcardRepository,
	progRepo repository.ProgressRepository,
	logRepo repository.ReviewLogRepository,
	generator OptionGenerator,
	cfg *config.Config,
) StudyService {
	return &studyService{
		db:        db,
		guard:     guard,
		selector:  selector,
		userRepo:  userRepo,
		cardRepo:  cardRepo,
		progRepo:  progRepo,
		logRepo:   logRepo,
		generator: generator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ListDue は復習期限が来たカードを next_due_at の早い順に返します。
func (s *studyService) ListDue(ctx context.Context, email string, setID uuid.UUID, limit int) ([]*model.DueCardResponse, error) {
	logger := middleware.GetLogger(ctx).With("set_id", setID.String(), "limit", limit)

	if limit < 1 || limit > s.cfg.Study.MaxLimit {
		logger.Warn("Invalid due limit")
		return nil, model.NewAppError("INVALID_LIMIT", fmt.Sprintf("limitは1から%dの範囲で指定してください。", s.cfg.Study.MaxLimit), "limit", model.ErrInvalidInput)
	}

	user, err := s.guard.ResolveCaller(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	set, err := s.guard.EnsureMemberOfSet(ctx, s.db, setID, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	due, err := s.selector.SelectDue(ctx, s.db, user.ID, setID, limit, now)
	if err != nil {
		logger.Error("Failed to select due cards", "error", err, "user_id", user.ID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習カードの取得に失敗しました。", "", err)
	}

	items := make([]*model.DueCardResponse, 0, len(due))
	for _, p := range due {
		card := p.Flashcard
		if card == nil {
			// Preload 済みのはずだが、欠けていれば取り直す
			card, err = s.cardRepo.FindByID(ctx, s.db, p.FlashcardID)
			if err != nil {
				logger.Error("Failed to load flashcard for progress", "error", err, "flashcard_id", p.FlashcardID.String())
				return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習カードの取得に失敗しました。", "", err)
			}
		}

		if err := s.cardRepo.IncrementUsage(ctx, s.db, card.ID); err != nil {
			logger.Warn("Failed to increment usage count", "error", err, "flashcard_id", card.ID.String())
		}

		if !card.HasOptions() {
			s.fillOptions(ctx, logger, card, set.Title)
		}

		items = append(items, &model.DueCardResponse{
			FlashcardID:        card.ID,
			Question:           card.Question,
			Answer:             card.Answer,
			Explanation:        card.Explanation,
			Difficulty:         card.Difficulty,
			Tags:               nonNil(card.Tags),
			Options:            nonNil(card.Options),
			CorrectOptionIndex: card.CorrectOptionIndex,
			NextDueAt:          p.NextDueAt,
		})
	}

	logger.Info("Listed due cards", "user_id", user.ID.String(), "count", len(items))
	return items, nil
}

// fillOptions は選択肢を生成してカードに保存します。生成に失敗してもエラーにはせず、固定の選択肢を使います。
func (s *studyService) fillOptions(ctx context.Context, logger *slog.Logger, card *model.Flashcard, topic string) {
	options, err := s.generator.GenerateOptions(ctx, card.Question, card.Answer, topic)
	if err != nil {
		if errors.Is(err, ErrGeneratorDisabled) {
			logger.Debug("Option generator disabled, using fallback options", "flashcard_id", card.ID.String())
		} else {
			logger.Warn("Option generation failed, using fallback options", "error", err, "flashcard_id", card.ID.String())
		}
		options = FallbackOptions(card.Answer)
	}

	options, correct := EnsureCorrectOption(options, card.Answer)
	card.Options = options
	card.CorrectOptionIndex = &correct

	if err := s.cardRepo.UpdateOptions(ctx, s.db, card.ID, options, correct); err != nil {
		logger.Warn("Failed to persist generated options", "error", err, "flashcard_id", card.ID.String())
	}
}

// SubmitReview は1回分の回答を反映します。進捗・カード難易度・ユーザーの XP と連続日数・ログを同じトランザクションで更新します。
func (s *studyService) SubmitReview(ctx context.Context, email string, setID, flashcardID uuid.UUID, req *model.SubmitReviewRequest) (*model.ReviewResultResponse, error) {
	logger := middleware.GetLogger(ctx).With("set_id", setID.String(), "flashcard_id", flashcardID.String())

	if req.Grade == nil && !req.HasRawAnswer() {
		logger.Warn("Submission has neither grade nor answer")
		return nil, model.NewAppError("INVALID_SUBMISSION", "gradeまたは回答内容を指定してください。", "grade", model.ErrInvalidInput)
	}
	var explicit *srs.Grade
	if req.Grade != nil {
		g, err := srs.ParseGrade(*req.Grade)
		if err != nil {
			logger.Warn("Invalid grade", "grade", *req.Grade)
			return nil, model.NewAppError("INVALID_GRADE", "gradeは0から3の範囲で指定してください。", "grade", err)
		}
		explicit = &g
	}

	user, err := s.guard.ResolveCaller(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	set, err := s.guard.EnsureMemberOfSet(ctx, s.db, setID, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var result *model.ReviewResultResponse

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. カードとユーザーを行ロック付きで読む
		card, err := s.cardRepo.FindByIDForUpdate(ctx, tx, flashcardID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("FLASHCARD_NOT_FOUND", "カードが見つかりません。", "", model.ErrNotFound)
			}
			return err
		}
		if card.SetID != set.ID {
			return model.NewAppError("FLASHCARD_NOT_IN_SET", "指定されたカードはこのセットに属していません。", "flashcard_id", model.ErrInvalidInput)
		}
		locked, err := s.userRepo.FindByIDForUpdate(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		// 2. 進捗を取得 (無ければ作成、競合したら相手の行を読み直す)
		progress, err := s.resolveProgress(ctx, tx, locked.ID, card.ID, now)
		if err != nil {
			return err
		}

		// 3. 正誤と評価
		var isCorrect *bool
		correct := false
		// 選択肢の無いカードに番号だけ届いた場合は、明示の評価があればそちらを採用する
		unjudgeable := req.UserAnswer == nil && req.SelectedOptionIndex != nil && !card.HasOptions()
		if req.HasRawAnswer() && !(explicit != nil && unjudgeable) {
			c, appErr := judgeAnswer(card, req)
			if appErr != nil {
				return appErr
			}
			correct = c
			isCorrect = &c
		}
		responseTimeMs := srs.ExpectedResponseTime(card.Difficulty).Milliseconds()
		if req.ResponseTimeMs != nil {
			responseTimeMs = *req.ResponseTimeMs
		}

		var grade srs.Grade
		if explicit != nil {
			grade = *explicit
			if isCorrect == nil {
				correct = grade != srs.GradeAgain
			}
		} else {
			grade = srs.InferGrade(correct, responseTimeMs, card.Difficulty)
		}

		// 4. スケジューリング
		next, err := srs.ApplyReview(progress.State(), grade, now)
		if err != nil {
			return err
		}
		progress.Apply(next)
		if err := s.progRepo.Update(ctx, tx, progress); err != nil {
			return err
		}

		// 5. XP は調整前の難易度で計算し、その後で難易度を更新する
		xp := srs.XPForGrade(grade, card.Difficulty)
		newDifficulty := srs.AdjustDifficulty(card.Difficulty, correct, responseTimeMs)
		if newDifficulty != card.Difficulty {
			if err := s.cardRepo.UpdateDifficulty(ctx, tx, card.ID, newDifficulty); err != nil {
				return err
			}
		}

		// 6. ゲーミフィケーション
		xpBefore := locked.XP
		locked.XP += xp
		locked.Level = srs.LevelFromXP(locked.XP)
		streak := srs.ApplyDailyStreak(srs.Streak{Count: locked.StreakCount, LastStudyDate: locked.LastStudyDate}, now, s.cfg.Study.Location())
		locked.StreakCount = streak.Count
		locked.LastStudyDate = streak.LastStudyDate
		if err := s.userRepo.UpdateGamification(ctx, tx, locked); err != nil {
			return err
		}

		// 7. ログ
		entry := &model.ReviewLog{
			ID:          uuid.New(),
			UserID:      locked.ID,
			GroupID:     set.GroupID,
			SetID:       set.ID,
			FlashcardID: card.ID,
			Grade:       int(grade),
			XPAwarded:   xp,
			ReviewedAt:  now,
		}
		if err := s.logRepo.Create(ctx, tx, entry); err != nil {
			return err
		}

		result = &model.ReviewResultResponse{
			FlashcardID:     card.ID,
			Grade:           int(grade),
			NewIntervalDays: progress.IntervalDays,
			NewEase:         progress.Ease,
			NewRepetitions:  progress.Repetitions,
			NextDueAt:       progress.NextDueAt,
			IsCorrect:       isCorrect,
			Mastered:        progress.Mastered,
			NewDifficulty:   newDifficulty,
			XPAwarded:       xp,
			TotalXP:         locked.XP,
			Level:           locked.Level,
			LeveledUp:       srs.LeveledUp(xpBefore, locked.XP),
			StreakCount:     locked.StreakCount,
		}
		if isCorrect != nil {
			result.Feedback = feedbackFor(*isCorrect, card.Answer)
		}
		return nil
	})

	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			logger.Warn("Review rejected", "code", appErr.Detail.Code)
			return nil, appErr
		}
		logger.Error("Transaction failed for SubmitReview", "error", err, "user_id", user.ID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "回答の保存に失敗しました。", "", err)
	}

	logger.Info("Review submitted",
		"user_id", user.ID.String(),
		"grade", result.Grade,
		"interval_days", result.NewIntervalDays,
		"xp_awarded", result.XPAwarded,
	)
	return result, nil
}

func (s *studyService) resolveProgress(ctx context.Context, tx *gorm.DB, userID, cardID uuid.UUID, now time.Time) (*model.CardProgress, error) {
	progress, err := s.progRepo.FindByUserAndCardForUpdate(ctx, tx, userID, cardID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	progress = model.NewCardProgress(userID, cardID, now)
	if err := s.progRepo.Create(ctx, tx, progress); err != nil {
		if !errors.Is(err, model.ErrConflict) {
			return nil, err
		}
		middleware.GetLogger(ctx).Info("Progress created concurrently, re-reading", "user_id", userID.String(), "flashcard_id", cardID.String())
		return s.progRepo.FindByUserAndCardForUpdate(ctx, tx, userID, cardID)
	}
	return progress, nil
}

// judgeAnswer は選択肢番号か自由入力で正誤を判定します。
func judgeAnswer(card *model.Flashcard, req *model.SubmitReviewRequest) (bool, *model.AppError) {
	if req.SelectedOptionIndex != nil {
		if !card.HasOptions() {
			if req.UserAnswer != nil {
				return normalizeAnswer(*req.UserAnswer) == normalizeAnswer(card.Answer), nil
			}
			return false, model.NewAppError("OPTIONS_NOT_AVAILABLE", "このカードには選択肢がありません。", "selected_option_index", model.ErrInvalidInput)
		}
		idx := *req.SelectedOptionIndex
		if idx < 0 || idx >= len(card.Options) {
			return false, model.NewAppError("INVALID_OPTION_INDEX", "選択肢の番号が範囲外です。", "selected_option_index", model.ErrInvalidInput)
		}
		return idx == *card.CorrectOptionIndex, nil
	}
	return normalizeAnswer(*req.UserAnswer) == normalizeAnswer(card.Answer), nil
}

func feedbackFor(correct bool, answer string) string {
	if correct {
		return "正解です！"
	}
	return fmt.Sprintf("不正解です。正解は「%s」です。", answer)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
