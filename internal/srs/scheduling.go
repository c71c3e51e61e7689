// internal/srs/scheduling.go
package srs

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidGrade は 0〜3 以外の評価が渡されたときに返されます。
var ErrInvalidGrade = errors.New("srs: grade must be between 0 and 3")

// Grade は復習時の自己評価です。
type Grade int

const (
	GradeAgain Grade = iota // 0: 思い出せなかった
	GradeHard               // 1
	GradeGood               // 2
	GradeEasy               // 3
)

var gradeNames = [...]string{GradeAgain: "again", GradeHard: "hard", GradeGood: "good", GradeEasy: "easy"}

func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// IsValid は g が GradeAgain から GradeEasy の範囲にあるかを返します。
func (g Grade) IsValid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// ParseGrade は int を Grade に変換します。範囲外なら ErrInvalidGrade。
func ParseGrade(v int) (Grade, error) {
	g := Grade(v)
	if !g.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGrade, v)
	}
	return g, nil
}

const (
	DefaultEase = 2.5
	MinEase     = 1.0
	// 不正解時にだけ適用される下限
	MinEaseAfterLapse = 1.3

	lapseEasePenalty = 0.2
	masteryStreak    = 3
)

// 正解時の ease 変化量
var easeDelta = map[Grade]float64{
	GradeHard: -0.5,
	GradeGood: 0.0,
	GradeEasy: 0.15,
}

// State は (ユーザー, カード) ごとの復習状態です。
type State struct {
	Ease               float64
	Repetitions        int
	IntervalDays       int
	ConsecutiveCorrect int
	Mastered           bool
	NextDueAt          time.Time
	LastReviewedAt     *time.Time
}

// NewState は初回表示用の状態を返します。nextDueAt は now の1秒前で、すぐに出題対象になります。
func NewState(now time.Time) State {
	return State{
		Ease:      DefaultEase,
		NextDueAt: now.Add(-time.Second),
	}
}

// ApplyReview は簡易版 SM-2 で次の状態を計算します。引数の st は変更しません。
func ApplyReview(st State, g Grade, now time.Time) (State, error) {
	if !g.IsValid() {
		return st, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}

	next := st
	if g == GradeAgain {
		next.Repetitions = 0
		next.Ease = roundEase(math.Max(MinEaseAfterLapse, st.Ease-lapseEasePenalty))
		next.IntervalDays = 0
		next.ConsecutiveCorrect = 0
	} else {
		next.Ease = roundEase(math.Max(MinEase, st.Ease+easeDelta[g]))
		next.Repetitions = st.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 3
		default:
			next.IntervalDays = max(1, int(math.Round(float64(st.IntervalDays)*next.Ease)))
		}
		next.ConsecutiveCorrect = st.ConsecutiveCorrect + 1
		// 一度 mastered になったら戻さない
		if !next.Mastered && next.ConsecutiveCorrect >= masteryStreak {
			next.Mastered = true
		}
	}

	// ease の下限は常に守る
	if next.Ease < MinEase {
		next.Ease = MinEase
	}

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.NextDueAt = now.AddDate(0, 0, next.IntervalDays)
	return next, nil
}

// roundEase は浮動小数の誤差が積み重ならないよう小数第2位に丸めます。
func roundEase(e float64) float64 {
	return math.Round(e*100) / 100
}
