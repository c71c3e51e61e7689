package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/repository"
	"go_5_skill_sync/internal/srs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStudyService(db *gorm.DB, r repos, gen OptionGenerator) *studyService {
	cfg := testConfig()
	svc := NewStudyService(db, r.guard(), NewDueSelector(r.progress, r.card, cfg.Study.SeedBatchMin),
		r.user, r.card, r.progress, r.log, gen, cfg).(*studyService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func TestStudyService_ListDue(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 初回は先頭10枚を初期化し、2回目も同じカードを返す", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 12)
		svc := newTestStudyService(db, r, &fakeGenerator{err: errors.New("down")})

		first, err := svc.ListDue(ctx, fx.user.Email, fx.set.ID, 5)
		require.NoError(t, err)
		require.Len(t, first, 5)
		assert.Equal(t, int64(10), countRows(t, db, &model.CardProgress{}, "user_id = ?", fx.user.ID))

		second, err := svc.ListDue(ctx, fx.user.Email, fx.set.ID, 5)
		require.NoError(t, err)
		require.Len(t, second, 5)
		assert.Equal(t, int64(10), countRows(t, db, &model.CardProgress{}, "user_id = ?", fx.user.ID), "重複して作成しない")

		for i := range first {
			assert.Equal(t, first[i].FlashcardID, second[i].FlashcardID)
			assert.False(t, first[i].NextDueAt.After(testNow))
		}
	})

	t.Run("正常系: limit がシード最小数より大きければ limit 枚を初期化する", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 15)
		svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})

		items, err := svc.ListDue(ctx, fx.user.Email, fx.set.ID, 12)
		require.NoError(t, err)
		assert.Len(t, items, 12)
		assert.Equal(t, int64(12), countRows(t, db, &model.CardProgress{}, "user_id = ?", fx.user.ID))
	})

	t.Run("正常系: 生成した選択肢に正解が含まれていればその位置を保存する", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 1)
		gen := &fakeGenerator{options: []string{"x", "y", " A0 ", "z"}}
		svc := newTestStudyService(db, r, gen)

		items, err := svc.ListDue(ctx, fx.user.Email, fx.set.ID, 1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.NotNil(t, items[0].CorrectOptionIndex)
		assert.Equal(t, 2, *items[0].CorrectOptionIndex)
		assert.Equal(t, 1, gen.calls)

		stored, err := r.card.FindByID(ctx, db, fx.cards[0].ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", " A0 ", "z"}, stored.Options)
		assert.Equal(t, 1, stored.UsageCount)

		// 保存済みなので2回目は生成しない
		_, err = svc.ListDue(ctx, fx.user.Email, fx.set.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("正常系: 正解を含まない選択肢は先頭を正解で置き換える", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 1)
		svc := newTestStudyService(db, r, &fakeGenerator{options: []string{"w", "x", "y", "z"}})

		items, err := svc.ListDue(ctx, fx.user.Email, fx.set.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"a0", "x", "y", "z"}, items[0].Options)
		assert.Equal(t, 0, *items[0].CorrectOptionIndex)
	})

	t.Run("正常系: 生成に失敗したら固定の選択肢を使う", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 1)
		svc := newTestStudyService(db, r, &fakeGenerator{err: errors.New("timeout")})

		items, err := svc.ListDue(ctx, fx.user.Email, fx.set.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, FallbackOptions("a0"), items[0].Options)
		assert.Equal(t, 0, *items[0].CorrectOptionIndex)
	})

	t.Run("正常系: 期限前のカードしか無ければ空を返し、再シードしない", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 3)
		p := model.NewCardProgress(fx.user.ID, fx.cards[0].ID, testNow)
		p.NextDueAt = testNow.Add(48 * time.Hour)
		require.NoError(t, r.progress.Create(ctx, db, p))
		svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})

		items, err := svc.ListDue(ctx, fx.user.Email, fx.set.ID, 5)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, int64(1), countRows(t, db, &model.CardProgress{}, "user_id = ?", fx.user.ID))
	})

	errCases := []struct {
		name    string
		limit   int
		setup   func(t *testing.T, db *gorm.DB, r repos, fx fixture) (string, uuid.UUID)
		wantErr error
		code    string
	}{
		{
			name:  "異常系: limit が 0",
			limit: 0,
			setup: func(t *testing.T, db *gorm.DB, r repos, fx fixture) (string, uuid.UUID) {
				return fx.user.Email, fx.set.ID
			},
			wantErr: model.ErrInvalidInput,
			code:    "INVALID_LIMIT",
		},
		{
			name:  "異常系: limit が上限超え",
			limit: 101,
			setup: func(t *testing.T, db *gorm.DB, r repos, fx fixture) (string, uuid.UUID) {
				return fx.user.Email, fx.set.ID
			},
			wantErr: model.ErrInvalidInput,
			code:    "INVALID_LIMIT",
		},
		{
			name:  "異常系: ユーザーが存在しない",
			limit: 5,
			setup: func(t *testing.T, db *gorm.DB, r repos, fx fixture) (string, uuid.UUID) {
				return "ghost@example.com", fx.set.ID
			},
			wantErr: model.ErrNotFound,
			code:    "USER_NOT_FOUND",
		},
		{
			name:  "異常系: セットが存在しない",
			limit: 5,
			setup: func(t *testing.T, db *gorm.DB, r repos, fx fixture) (string, uuid.UUID) {
				return fx.user.Email, uuid.New()
			},
			wantErr: model.ErrNotFound,
			code:    "SET_NOT_FOUND",
		},
		{
			name:  "異常系: グループのメンバーではない",
			limit: 5,
			setup: func(t *testing.T, db *gorm.DB, r repos, fx fixture) (string, uuid.UUID) {
				return createUser(t, db, r).Email, fx.set.ID
			},
			wantErr: model.ErrForbidden,
			code:    "NOT_GROUP_MEMBER",
		},
		{
			name:  "異常系: 招待中のメンバーは認可しない",
			limit: 5,
			setup: func(t *testing.T, db *gorm.DB, r repos, fx fixture) (string, uuid.UUID) {
				u := createUser(t, db, r)
				addMember(t, db, r, fx.group.ID, u.ID, model.MembershipPending)
				return u.Email, fx.set.ID
			},
			wantErr: model.ErrForbidden,
			code:    "NOT_GROUP_MEMBER",
		},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			r := newRepos()
			fx := createFixture(t, db, r, 2)
			svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})
			email, setID := tc.setup(t, db, r, fx)

			items, err := svc.ListDue(ctx, email, setID, tc.limit)

			assert.Nil(t, items)
			require.ErrorIs(t, err, tc.wantErr)
			var appErr *model.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.code, appErr.Detail.Code)
			assert.Equal(t, int64(0), countRows(t, db, &model.CardProgress{}, "1 = 1"))
		})
	}
}

func TestStudyService_SubmitReview_ExplicitGrade(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := newRepos()
	fx := createFixture(t, db, r, 1)
	svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})
	card := fx.cards[0]

	// 1日目: 進捗が無くても作成して反映する
	res, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, card.ID, &model.SubmitReviewRequest{Grade: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Grade)
	assert.Equal(t, 1, res.NewRepetitions)
	assert.Equal(t, 1, res.NewIntervalDays)
	assert.InDelta(t, 2.5, res.NewEase, 1e-9)
	assert.True(t, res.NextDueAt.Equal(testNow.AddDate(0, 0, 1)))
	assert.Nil(t, res.IsCorrect)
	assert.Empty(t, res.Feedback)
	assert.Equal(t, 9, res.XPAwarded) // 6 * 1.5
	assert.Equal(t, 9, res.TotalXP)
	assert.Equal(t, 1, res.Level)
	assert.Equal(t, 1, res.StreakCount)
	assert.Equal(t, 3, res.NewDifficulty)
	assert.False(t, res.Mastered)

	// 2日目: easy
	svc.now = func() time.Time { return testNow.AddDate(0, 0, 1) }
	res, err = svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, card.ID, &model.SubmitReviewRequest{Grade: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.NewRepetitions)
	assert.Equal(t, 3, res.NewIntervalDays)
	assert.InDelta(t, 2.65, res.NewEase, 1e-9)
	assert.Equal(t, 2, res.StreakCount)

	// 5日目: 3回連続正解で mastered、連続日数は途切れる
	svc.now = func() time.Time { return testNow.AddDate(0, 0, 4) }
	res, err = svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, card.ID, &model.SubmitReviewRequest{Grade: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewRepetitions)
	assert.Equal(t, 8, res.NewIntervalDays)
	assert.True(t, res.Mastered)
	assert.Equal(t, 1, res.StreakCount)

	// 同じ日に again: mastered は維持
	res, err = svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, card.ID, &model.SubmitReviewRequest{Grade: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.NewRepetitions)
	assert.Equal(t, 0, res.NewIntervalDays)
	assert.Equal(t, 0, res.XPAwarded)
	assert.True(t, res.Mastered)
	assert.Equal(t, 1, res.StreakCount)
	// 不正解扱いなので難易度は下がる
	assert.Equal(t, 2, res.NewDifficulty)

	progress, err := r.progress.FindByUserAndCard(ctx, db, fx.user.ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.ConsecutiveCorrect)
	assert.True(t, progress.Mastered)
	assert.InDelta(t, 2.45, progress.Ease, 1e-9)

	user, err := r.user.FindByID(ctx, db, fx.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 9+11+9, user.XP)
	assert.Equal(t, 1, user.Level)

	stored, err := r.card.FindByID(ctx, db, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Difficulty)

	assert.Equal(t, int64(4), countRows(t, db, &model.ReviewLog{}, "user_id = ?", fx.user.ID))
	assert.Equal(t, int64(1), countRows(t, db, &model.CardProgress{}, "user_id = ?", fx.user.ID))
}

func TestStudyService_SubmitReview_Gamification(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 昨日学習していれば連続日数が伸び、レベルアップする", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 1)
		yesterday := testNow.AddDate(0, 0, -1)
		require.NoError(t, db.Model(&model.User{}).Where("id = ?", fx.user.ID).
			Updates(map[string]interface{}{"xp": 95, "streak_count": 3, "last_study_date": yesterday}).Error)
		svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})

		res, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{Grade: intPtr(2)})
		require.NoError(t, err)
		assert.Equal(t, 104, res.TotalXP)
		assert.Equal(t, 2, res.Level)
		assert.True(t, res.LeveledUp)
		assert.Equal(t, 4, res.StreakCount)

		user, err := r.user.FindByID(ctx, db, fx.user.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, user.Level)
		require.NotNil(t, user.LastStudyDate)
		assert.True(t, user.LastStudyDate.Equal(testNow))
	})

	t.Run("正常系: ログにグループとセットと獲得XPが残る", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 1)
		svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})

		_, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{Grade: intPtr(1)})
		require.NoError(t, err)

		logs, err := r.log.FindByUserBetween(ctx, db, fx.user.ID, testNow.Add(-time.Hour), testNow.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, fx.group.ID, logs[0].GroupID)
		assert.Equal(t, fx.set.ID, logs[0].SetID)
		assert.Equal(t, 1, logs[0].Grade)
		assert.Equal(t, 8, logs[0].XPAwarded) // round(5 * 1.5)
	})
}

func TestStudyService_SubmitReview_RawAnswer(t *testing.T) {
	ctx := context.Background()

	setupWithOptions := func(t *testing.T) (*gorm.DB, repos, fixture, *studyService) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 1)
		require.NoError(t, r.card.UpdateOptions(ctx, db, fx.cards[0].ID, []string{"x", "a0", "y", "z"}, 1))
		return db, r, fx, newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})
	}

	t.Run("正常系: 速い正解は easy と判定し難易度を上げる", func(t *testing.T) {
		db, r, fx, svc := setupWithOptions(t)

		res, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{
			SelectedOptionIndex: intPtr(1),
			ResponseTimeMs:      int64Ptr(1000),
		})
		require.NoError(t, err)
		assert.Equal(t, int(srs.GradeEasy), res.Grade)
		require.NotNil(t, res.IsCorrect)
		assert.True(t, *res.IsCorrect)
		assert.Equal(t, "正解です！", res.Feedback)
		assert.Equal(t, 11, res.XPAwarded) // round(7 * 1.5)
		assert.Equal(t, 4, res.NewDifficulty)

		stored, err := r.card.FindByID(ctx, db, fx.cards[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.Difficulty)
	})

	t.Run("正常系: 不正解は again で正解をフィードバックする", func(t *testing.T) {
		_, _, fx, svc := setupWithOptions(t)

		res, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{
			SelectedOptionIndex: intPtr(0),
			ResponseTimeMs:      int64Ptr(3000),
		})
		require.NoError(t, err)
		assert.Equal(t, int(srs.GradeAgain), res.Grade)
		assert.False(t, *res.IsCorrect)
		assert.Equal(t, "不正解です。正解は「a0」です。", res.Feedback)
		assert.Equal(t, 0, res.XPAwarded)
		assert.Equal(t, 2, res.NewDifficulty)
	})

	t.Run("正常系: 自由入力は大文字小文字と空白を無視して比較し、回答時間が無ければ想定時間で判定する", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 1)
		svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})

		res, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{
			UserAnswer: strPtr("  A0 "),
		})
		require.NoError(t, err)
		assert.True(t, *res.IsCorrect)
		assert.Equal(t, int(srs.GradeGood), res.Grade)
		assert.Equal(t, 3, res.NewDifficulty)
	})

	t.Run("正常系: grade が指定されていればそちらを優先する", func(t *testing.T) {
		_, _, fx, svc := setupWithOptions(t)

		res, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{
			Grade:               intPtr(1),
			SelectedOptionIndex: intPtr(1),
			ResponseTimeMs:      int64Ptr(1000),
		})
		require.NoError(t, err)
		assert.Equal(t, int(srs.GradeHard), res.Grade)
		assert.True(t, *res.IsCorrect)
	})

	t.Run("異常系: 選択肢番号が範囲外", func(t *testing.T) {
		db, _, fx, svc := setupWithOptions(t)

		_, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{
			SelectedOptionIndex: intPtr(4),
		})
		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INVALID_OPTION_INDEX", appErr.Detail.Code)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		// ロールバックされている
		assert.Equal(t, int64(0), countRows(t, db, &model.CardProgress{}, "1 = 1"))
		assert.Equal(t, int64(0), countRows(t, db, &model.ReviewLog{}, "1 = 1"))
	})

	t.Run("異常系: 選択肢の無いカードに番号だけ送る", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 1)
		svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})

		_, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{
			SelectedOptionIndex: intPtr(0),
		})
		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "OPTIONS_NOT_AVAILABLE", appErr.Detail.Code)
	})

	t.Run("正常系: 選択肢の無いカードでも grade があれば番号は判定せず grade を採用する", func(t *testing.T) {
		db := setupTestDB(t)
		r := newRepos()
		fx := createFixture(t, db, r, 1)
		svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})

		res, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{
			Grade:               intPtr(2),
			SelectedOptionIndex: intPtr(0),
		})
		require.NoError(t, err)
		assert.Equal(t, int(srs.GradeGood), res.Grade)
		assert.Nil(t, res.IsCorrect)
		assert.Empty(t, res.Feedback)
		assert.Equal(t, int64(1), countRows(t, db, &model.ReviewLog{}, "flashcard_id = ?", fx.cards[0].ID))
	})
}

func TestStudyService_SubmitReview_Errors(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		req     *model.SubmitReviewRequest
		card    func(t *testing.T, db *gorm.DB, r repos, fx fixture) uuid.UUID
		wantErr error
		code    string
	}{
		{
			name:    "異常系: grade が範囲外",
			req:     &model.SubmitReviewRequest{Grade: intPtr(4)},
			card:    func(t *testing.T, db *gorm.DB, r repos, fx fixture) uuid.UUID { return fx.cards[0].ID },
			wantErr: srs.ErrInvalidGrade,
			code:    "INVALID_GRADE",
		},
		{
			name:    "異常系: grade も回答も無い",
			req:     &model.SubmitReviewRequest{},
			card:    func(t *testing.T, db *gorm.DB, r repos, fx fixture) uuid.UUID { return fx.cards[0].ID },
			wantErr: model.ErrInvalidInput,
			code:    "INVALID_SUBMISSION",
		},
		{
			name:    "異常系: カードが存在しない",
			req:     &model.SubmitReviewRequest{Grade: intPtr(2)},
			card:    func(t *testing.T, db *gorm.DB, r repos, fx fixture) uuid.UUID { return uuid.New() },
			wantErr: model.ErrNotFound,
			code:    "FLASHCARD_NOT_FOUND",
		},
		{
			name: "異常系: カードが別のセットに属している",
			req:  &model.SubmitReviewRequest{Grade: intPtr(2)},
			card: func(t *testing.T, db *gorm.DB, r repos, fx fixture) uuid.UUID {
				other := &model.FlashcardSet{ID: uuid.New(), GroupID: fx.group.ID, Title: "other"}
				require.NoError(t, r.set.Create(ctx, db, other))
				c := &model.Flashcard{ID: uuid.New(), SetID: other.ID, GroupID: fx.group.ID, Question: "q", Answer: "a", Difficulty: 3}
				require.NoError(t, r.card.Create(ctx, db, c))
				return c.ID
			},
			wantErr: model.ErrInvalidInput,
			code:    "FLASHCARD_NOT_IN_SET",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			r := newRepos()
			fx := createFixture(t, db, r, 1)
			svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})
			cardID := tc.card(t, db, r, fx)

			res, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, cardID, tc.req)

			assert.Nil(t, res)
			require.ErrorIs(t, err, tc.wantErr)
			var appErr *model.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.code, appErr.Detail.Code)

			// 状態は何も変わらない
			assert.Equal(t, int64(0), countRows(t, db, &model.CardProgress{}, "1 = 1"))
			assert.Equal(t, int64(0), countRows(t, db, &model.ReviewLog{}, "1 = 1"))
			user, err := r.user.FindByID(ctx, db, fx.user.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, user.XP)
		})
	}
}

// racingProgressRepo は最初の検索の直後に別リクエストが進捗を作った状況を再現します
type racingProgressRepo struct {
	repository.ProgressRepository
	raced bool
}

func (r *racingProgressRepo) FindByUserAndCardForUpdate(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID) (*model.CardProgress, error) {
	if !r.raced {
		r.raced = true
		winner := model.NewCardProgress(userID, flashcardID, testNow)
		winner.Repetitions = 2
		winner.IntervalDays = 3
		if err := r.ProgressRepository.Create(ctx, tx, winner); err != nil {
			return nil, err
		}
		return nil, model.ErrNotFound
	}
	return r.ProgressRepository.FindByUserAndCardForUpdate(ctx, tx, userID, flashcardID)
}

func TestStudyService_SubmitReview_ConcurrentProgressCreation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := newRepos()
	fx := createFixture(t, db, r, 1)
	r.progress = &racingProgressRepo{ProgressRepository: r.progress}
	svc := newTestStudyService(db, r, &fakeGenerator{err: ErrGeneratorDisabled})

	res, err := svc.SubmitReview(ctx, fx.user.Email, fx.set.ID, fx.cards[0].ID, &model.SubmitReviewRequest{Grade: intPtr(2)})
	require.NoError(t, err)
	// 先に作られた行 (repetitions=2) に対して反映されている
	assert.Equal(t, 3, res.NewRepetitions)
	assert.Equal(t, int64(1), countRows(t, db, &model.CardProgress{}, "user_id = ?", fx.user.ID))
}

func TestDueSelector_SeedSkipsExisting(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := newRepos()
	fx := createFixture(t, db, r, 10)
	selector := NewDueSelector(r.progress, r.card, 10)

	// 並行したリクエストが1枚目を先に作っていた
	require.NoError(t, r.progress.Create(ctx, db, model.NewCardProgress(fx.user.ID, fx.cards[0].ID, testNow)))

	created, err := selector.seed(ctx, db, fx.user.ID, fx.set.ID, 10, testNow)
	require.NoError(t, err)
	assert.Equal(t, 9, created)
	assert.Equal(t, int64(10), countRows(t, db, &model.CardProgress{}, "user_id = ?", fx.user.ID))
}
