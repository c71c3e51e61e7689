// internal/srs/difficulty.go
package srs

import "time"

const (
	MinDifficulty     = 1
	MaxDifficulty     = 5
	DefaultDifficulty = 3
)

var expectedResponseTime = map[int]time.Duration{
	1: 5 * time.Second,
	2: 8 * time.Second,
	3: 12 * time.Second,
	4: 15 * time.Second,
	5: 20 * time.Second,
}

// ClampDifficulty は難易度を [1,5] に収めます。
func ClampDifficulty(d int) int {
	return min(MaxDifficulty, max(MinDifficulty, d))
}

// ExpectedResponseTime は難易度ごとの想定回答時間を返します。
func ExpectedResponseTime(difficulty int) time.Duration {
	return expectedResponseTime[ClampDifficulty(difficulty)]
}

// AdjustDifficulty は1回の回答結果からカードの難易度を調整します。
// 想定の 0.7 倍より速い正解で +1、1.5 倍より遅い正解か不正解で -1。
func AdjustDifficulty(difficulty int, isCorrect bool, responseTimeMs int64) int {
	current := ClampDifficulty(difficulty)
	if !isCorrect {
		return max(MinDifficulty, current-1)
	}

	expectedMs := float64(ExpectedResponseTime(current).Milliseconds())
	elapsed := float64(responseTimeMs)
	switch {
	case elapsed < 0.7*expectedMs:
		return min(MaxDifficulty, current+1)
	case elapsed > 1.5*expectedMs:
		return max(MinDifficulty, current-1)
	default:
		return current
	}
}

// InferGrade は正誤と回答時間から評価を推定します。
func InferGrade(isCorrect bool, responseTimeMs int64, difficulty int) Grade {
	if !isCorrect {
		return GradeAgain
	}
	ratio := float64(responseTimeMs) / float64(ExpectedResponseTime(difficulty).Milliseconds())
	switch {
	case ratio <= 0.5:
		return GradeEasy
	case ratio <= 1.2:
		return GradeGood
	default:
		return GradeHard
	}
}
