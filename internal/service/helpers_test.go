package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, repository.Migrate(db), "Failed to migrate test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 共有キャッシュのテーブルロックを避けるため接続は1本
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "SkillSync"},
		Study: config.StudyConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
			SeedBatchMin: 10,
			Timezone:     "UTC",
		},
	}
}

// repos はテストで使う本物のリポジトリ一式です
type repos struct {
	user     repository.UserRepository
	group    repository.GroupRepository
	set      repository.SetRepository
	card     repository.FlashcardRepository
	progress repository.ProgressRepository
	log      repository.ReviewLogRepository
}

func newRepos() repos {
	return repos{
		user:     repository.NewGormUserRepository(),
		group:    repository.NewGormGroupRepository(),
		set:      repository.NewGormSetRepository(),
		card:     repository.NewGormFlashcardRepository(),
		progress: repository.NewGormProgressRepository(),
		log:      repository.NewGormReviewLogRepository(),
	}
}

func (r repos) guard() *AccessGuard {
	return NewAccessGuard(r.user, r.group, r.set)
}

type fixture struct {
	user  *model.User
	group *model.Group
	set   *model.FlashcardSet
	cards []*model.Flashcard
}

func createUser(t *testing.T, db *gorm.DB, r repos) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", PasswordHash: "x", DisplayName: "u", Level: 1}
	require.NoError(t, r.user.Create(context.Background(), db, u))
	return u
}

func addMember(t *testing.T, db *gorm.DB, r repos, groupID, userID uuid.UUID, status model.MembershipStatus) {
	t.Helper()
	require.NoError(t, r.group.AddMember(context.Background(), db, &model.GroupMembership{
		ID: uuid.New(), GroupID: groupID, UserID: userID, Role: model.RoleMember, Status: status,
	}))
}

func createFixture(t *testing.T, db *gorm.DB, r repos, cardCount int) fixture {
	t.Helper()
	ctx := context.Background()
	user := createUser(t, db, r)

	group := &model.Group{ID: uuid.New(), Name: "g", OwnerID: user.ID}
	require.NoError(t, r.group.Create(ctx, db, group))
	addMember(t, db, r, group.ID, user.ID, model.MembershipActive)

	set := &model.FlashcardSet{ID: uuid.New(), GroupID: group.ID, Title: "Go basics"}
	require.NoError(t, r.set.Create(ctx, db, set))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var cards []*model.Flashcard
	for i := 0; i < cardCount; i++ {
		c := &model.Flashcard{
			ID: uuid.New(), SetID: set.ID, GroupID: group.ID, CreatedByID: user.ID,
			Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i),
			Difficulty: 3,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, r.card.Create(ctx, db, c))
		cards = append(cards, c)
	}
	return fixture{user: user, group: group, set: set, cards: cards}
}

func countRows(t *testing.T, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

// fakeGenerator は呼び出し回数を数える OptionGenerator です
type fakeGenerator struct {
	options []string
	err     error
	calls   int
}

func (g *fakeGenerator) GenerateOptions(_ context.Context, _, _, _ string) ([]string, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	out := make([]string, len(g.options))
	copy(out, g.options)
	return out, nil
}
