package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPForGrade(t *testing.T) {
	tests := []struct {
		name       string
		grade      Grade
		difficulty int
		want       int
	}{
		{"正常系: again は常に 0", GradeAgain, 5, 0},
		{"正常系: hard 難易度1", GradeHard, 1, 5},
		{"正常系: good 難易度2", GradeGood, 2, 6},
		{"正常系: easy 難易度3 (7*1.5=10.5 は 11)", GradeEasy, 3, 11},
		{"正常系: hard 難易度3 (5*1.5=7.5 は 8)", GradeHard, 3, 8},
		{"正常系: good 難易度4", GradeGood, 4, 12},
		{"正常系: easy 難易度5", GradeEasy, 5, 14},
		{"異常系: 範囲外の難易度は丸める", GradeGood, 9, 12},
		{"異常系: 不正な評価は 0", Grade(8), 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, XPForGrade(tt.grade, tt.difficulty))
		})
	}
}

func TestXPForGrade_AgainIsZeroForAllDifficulties(t *testing.T) {
	for d := -1; d <= 7; d++ {
		assert.Zero(t, XPForGrade(GradeAgain, d))
	}
}

func TestLevelFromXP(t *testing.T) {
	assert.Equal(t, 1, LevelFromXP(-10))
	assert.Equal(t, 1, LevelFromXP(0))
	assert.Equal(t, 1, LevelFromXP(99))
	assert.Equal(t, 2, LevelFromXP(100))
	assert.Equal(t, 3, LevelFromXP(250))

	prev := LevelFromXP(0)
	for xp := 1; xp <= 1000; xp++ {
		lv := LevelFromXP(xp)
		assert.GreaterOrEqual(t, lv, prev)
		prev = lv
	}
}

func TestLeveledUp(t *testing.T) {
	assert.True(t, LeveledUp(95, 101))
	assert.False(t, LeveledUp(100, 150))
	assert.False(t, LeveledUp(10, 10))
}

func TestApplyDailyStreak(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	yesterdayLate := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	threeDaysAgo := now.AddDate(0, 0, -3)
	earlierToday := time.Date(2025, 3, 10, 0, 5, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   Streak
		want int
	}{
		{"正常系: 初回学習は 1", Streak{Count: 0}, 1},
		{"正常系: 昨日学習していれば +1", Streak{Count: 4, LastStudyDate: &yesterdayLate}, 5},
		{"正常系: 3日前なら 1 に戻る", Streak{Count: 9, LastStudyDate: &threeDaysAgo}, 1},
		{"正常系: 同じ日は据え置き", Streak{Count: 6, LastStudyDate: &earlierToday}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyDailyStreak(tt.in, now, time.UTC)
			assert.Equal(t, tt.want, out.Count)
			require.NotNil(t, out.LastStudyDate)
			assert.Equal(t, now, *out.LastStudyDate)
		})
	}
}

func TestApplyDailyStreak_UsesCalendarDaysInLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// UTC では同じ日だが、JST では 3/9 と 3/10
	last := time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC) // JST 23:00 3/9
	now := time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC)  // JST 01:00 3/10

	assert.Equal(t, 3, ApplyDailyStreak(Streak{Count: 3, LastStudyDate: &last}, now, time.UTC).Count)
	assert.Equal(t, 4, ApplyDailyStreak(Streak{Count: 3, LastStudyDate: &last}, now, tokyo).Count)
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2025, 3, 10, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), StartOfDay(ts, nil))
}
