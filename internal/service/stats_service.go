package service

import (
	"context"
	"time"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/repository"
	"go_5_skill_sync/internal/srs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxDailyXPDays  = 30
	leaderboardSpan = 7 * 24 * time.Hour
)

type StatsService interface {
	MyStats(ctx context.Context, email string) (*model.MyStatsResponse, error)
	DailyXP(ctx context.Context, email string, days int) ([]model.DailyXPEntry, error)
	WeeklyLeaderboard(ctx context.Context, email string, groupID uuid.UUID) ([]model.LeaderboardRow, error)
}

type statsService struct {
	db        *gorm.DB
	guard     *AccessGuard
	progRepo  repository.ProgressRepository
	logRepo   repository.ReviewLogRepository
	groupRepo repository.GroupRepository
	cfg       *config.Config
	now       func() time.Time
}

func NewStatsService(
	db *gorm.DB,
	guard *AccessGuard,
	progRepo repository.ProgressRepository,
	logRepo repository.ReviewLogRepository,
	groupRepo repository.GroupRepository,
	cfg *config.Config,
) StatsService {
	return &statsService{
		db:        db,
		guard:     guard,
		progRepo:  progRepo,
		logRepo:   logRepo,
		groupRepo: groupRepo,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *statsService) MyStats(ctx context.Context, email string) (*model.MyStatsResponse, error) {
	logger := middleware.GetLogger(ctx)

	user, err := s.guard.ResolveCaller(ctx, s.db, email)
	if err != nil {
		return nil, err
	}

	mastered, err := s.progRepo.CountMastered(ctx, s.db, user.ID)
	if err != nil {
		logger.Error("Failed to count mastered cards", "error", err, "user_id", user.ID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "統計情報の取得に失敗しました。", "", err)
	}

	loc := s.cfg.Study.Location()
	endOfToday := srs.StartOfDay(s.now(), loc).AddDate(0, 0, 1).UTC()
	// next_due_at <= 今日の終わり (翌日0時の直前)
	dueToday, err := s.progRepo.CountDueBefore(ctx, s.db, user.ID, endOfToday.Add(-time.Nanosecond))
	if err != nil {
		logger.Error("Failed to count due cards", "error", err, "user_id", user.ID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "統計情報の取得に失敗しました。", "", err)
	}

	return &model.MyStatsResponse{
		XP:            user.XP,
		Level:         srs.LevelFromXP(user.XP),
		StreakCount:   user.StreakCount,
		LastStudyDate: user.LastStudyDate,
		MasteredCards: mastered,
		DueToday:      dueToday,
	}, nil
}

// DailyXP は直近 days 日分の獲得 XP を古い日付から順に返します。復習の無い日は 0。
func (s *statsService) DailyXP(ctx context.Context, email string, days int) ([]model.DailyXPEntry, error) {
	logger := middleware.GetLogger(ctx)

	if days < 1 || days > maxDailyXPDays {
		return nil, model.NewAppError("INVALID_DAYS", "daysは1から30の範囲で指定してください。", "days", model.ErrInvalidInput)
	}

	user, err := s.guard.ResolveCaller(ctx, s.db, email)
	if err != nil {
		return nil, err
	}

	loc := s.cfg.Study.Location()
	today := srs.StartOfDay(s.now(), loc)
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	logs, err := s.logRepo.FindByUserBetween(ctx, s.db, user.ID, from.UTC(), to.UTC())
	if err != nil {
		logger.Error("Failed to load review logs", "error", err, "user_id", user.ID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "学習履歴の取得に失敗しました。", "", err)
	}

	totals := make(map[string]int, days)
	for _, l := range logs {
		totals[l.ReviewedAt.In(loc).Format(time.DateOnly)] += l.XPAwarded
	}

	entries := make([]model.DailyXPEntry, 0, days)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		entries = append(entries, model.DailyXPEntry{
			Date: key,
			Day:  d.Format("Mon"),
			XP:   totals[key],
		})
	}
	return entries, nil
}

// WeeklyLeaderboard は直近7日間のグループ内 XP ランキングを返します。
func (s *statsService) WeeklyLeaderboard(ctx context.Context, email string, groupID uuid.UUID) ([]model.LeaderboardRow, error) {
	logger := middleware.GetLogger(ctx).With("group_id", groupID.String())

	user, err := s.guard.ResolveCaller(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.EnsureMemberOfGroup(ctx, s.db, groupID, user.ID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rows, err := s.groupRepo.WeeklyXP(ctx, s.db, groupID, now.Add(-leaderboardSpan), now)
	if err != nil {
		logger.Error("Failed to aggregate weekly xp", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ランキングの取得に失敗しました。", "", err)
	}
	if rows == nil {
		rows = []model.LeaderboardRow{}
	}
	return rows, nil
}
