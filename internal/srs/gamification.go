// internal/srs/gamification.go
package srs

import (
	"math"
	"time"
)

// XPPerLevel はレベルが1つ上がるのに必要な XP です。
const XPPerLevel = 100

var baseXP = map[Grade]int{
	GradeAgain: 0,
	GradeHard:  5,
	GradeGood:  6,
	GradeEasy:  7,
}

// 難易度ごとの XP 倍率。範囲外の難易度は ClampDifficulty で丸めてから引く。
var difficultyMultiplier = map[int]float64{
	1: 1.0,
	2: 1.0,
	3: 1.5,
	4: 2.0,
	5: 2.0,
}

// XPForGrade は評価とカード難易度から獲得 XP を返します。GradeAgain は常に 0。
func XPForGrade(g Grade, difficulty int) int {
	base, ok := baseXP[g]
	if !ok || base == 0 {
		return 0
	}
	return int(math.Round(float64(base) * difficultyMultiplier[ClampDifficulty(difficulty)]))
}

// LevelFromXP は累積 XP からレベルを求めます。0〜99 XP がレベル1。
func LevelFromXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// LeveledUp は XP 加算前後でレベルが上がったかを返します。
func LeveledUp(xpBefore, xpAfter int) bool {
	return LevelFromXP(xpAfter) > LevelFromXP(xpBefore)
}

// Streak はユーザーの連続学習日数の状態です。
type Streak struct {
	Count         int
	LastStudyDate *time.Time
}

// ApplyDailyStreak は loc のカレンダー日付で連続学習日数を更新します。
// 前回が昨日なら +1、同じ日なら据え置き、それ以外 (未学習を含む) は 1 に戻します。
func ApplyDailyStreak(s Streak, now time.Time, loc *time.Location) Streak {
	if loc == nil {
		loc = time.UTC
	}

	next := s
	switch {
	case s.LastStudyDate == nil:
		next.Count = 1
	default:
		days := calendarDaysBetween(*s.LastStudyDate, now, loc)
		switch {
		case days == 0:
			// 同じ日は据え置き
		case days == 1:
			next.Count = s.Count + 1
		default:
			next.Count = 1
		}
	}

	studied := now
	next.LastStudyDate = &studied
	return next
}

// StartOfDay は loc における t の日付の 0 時を返します。
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// calendarDaysBetween は from から to までのカレンダー日数差を返します (時刻は無視)。
func calendarDaysBetween(from, to time.Time, loc *time.Location) int {
	a := StartOfDay(from, loc)
	b := StartOfDay(to, loc)
	// DST をまたいでも日付差が崩れないよう UTC の同日付で比較する
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
