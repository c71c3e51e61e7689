package model

import (
	"time"

	"github.com/google/uuid"
)

// DueCardResponse は復習対象カード1枚分のレスポンスです。
type DueCardResponse struct {
	FlashcardID        uuid.UUID `json:"flashcard_id"`
	Question           string    `json:"question"`
	Answer             string    `json:"answer"`
	Explanation        string    `json:"explanation,omitempty"`
	Difficulty         int       `json:"difficulty"`
	Tags               []string  `json:"tags"`
	Options            []string  `json:"options"`
	CorrectOptionIndex *int      `json:"correct_option_index"`
	NextDueAt          time.Time `json:"next_due_at"`
}

// SubmitReviewRequest は grade の直接指定か、回答内容 (選択肢/自由入力 + 回答時間) のどちらかを受け付けます。
type SubmitReviewRequest struct {
	Grade               *int    `json:"grade" validate:"omitempty,min=0,max=3"`
	SelectedOptionIndex *int    `json:"selected_option_index" validate:"omitempty,min=0"`
	UserAnswer          *string `json:"user_answer" validate:"omitempty,max=1000"`
	ResponseTimeMs      *int64  `json:"response_time_ms" validate:"omitempty,min=0"`
}

// HasRawAnswer は回答内容による送信かどうかを返します。
func (r *SubmitReviewRequest) HasRawAnswer() bool {
	return r.SelectedOptionIndex != nil || r.UserAnswer != nil
}

type ReviewResultResponse struct {
	FlashcardID     uuid.UUID `json:"flashcard_id"`
	Grade           int       `json:"grade"`
	NewIntervalDays int       `json:"new_interval_days"`
	NewEase         float64   `json:"new_ease"`
	NewRepetitions  int       `json:"new_repetitions"`
	NextDueAt       time.Time `json:"next_due_at"`
	IsCorrect       *bool     `json:"is_correct,omitempty"`
	Feedback        string    `json:"feedback,omitempty"`

	Mastered      bool `json:"mastered"`
	NewDifficulty int  `json:"new_difficulty"`
	XPAwarded     int  `json:"xp_awarded"`
	TotalXP       int  `json:"total_xp"`
	Level         int  `json:"level"`
	LeveledUp     bool `json:"leveled_up"`
	StreakCount   int  `json:"streak_count"`
}

type MyStatsResponse struct {
	XP            int        `json:"xp"`
	Level         int        `json:"level"`
	StreakCount   int        `json:"streak_count"`
	LastStudyDate *time.Time `json:"last_study_date"`
	MasteredCards int64      `json:"mastered_cards"`
	DueToday      int64      `json:"due_today"`
}

type DailyXPEntry struct {
	Date string `json:"date"` // YYYY-MM-DD
	Day  string `json:"day"`  // Mon, Tue ...
	XP   int    `json:"xp"`
}

type LeaderboardRow struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	XP          int       `json:"xp"`
}
