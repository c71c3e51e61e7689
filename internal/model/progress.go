// internal/model/progress.go
package model

import (
	"time"

	"go_5_skill_sync/internal/srs"

	"github.com/google/uuid"
)

// CardProgress は (ユーザー, カード) ごとの復習状態を表します
type CardProgress struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_card,unique"` // 複合ユニークインデックスの一部
	FlashcardID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_card,unique"` // 複合ユニークインデックスの一部
	Ease               float64    `gorm:"not null;default:2.5"`
	Repetitions        int        `gorm:"not null;default:0"`
	IntervalDays       int        `gorm:"not null;default:0"`
	ConsecutiveCorrect int        `gorm:"not null;default:0"`
	Mastered           bool       `gorm:"not null;default:false"`
	NextDueAt          time.Time  `gorm:"not null;index"`
	LastReviewedAt     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// 関連 (Preload用)
	Flashcard *Flashcard `gorm:"foreignKey:FlashcardID;references:ID" json:"-"`
}

func (CardProgress) TableName() string {
	return "user_card_progress"
}

// NewCardProgress は初期状態の進捗を作ります。
func NewCardProgress(userID, flashcardID uuid.UUID, now time.Time) *CardProgress {
	p := &CardProgress{
		ID:          uuid.New(),
		UserID:      userID,
		FlashcardID: flashcardID,
	}
	p.Apply(srs.NewState(now))
	return p
}

func (p *CardProgress) State() srs.State {
	return srs.State{
		Ease:               p.Ease,
		Repetitions:        p.Repetitions,
		IntervalDays:       p.IntervalDays,
		ConsecutiveCorrect: p.ConsecutiveCorrect,
		Mastered:           p.Mastered,
		NextDueAt:          p.NextDueAt,
		LastReviewedAt:     p.LastReviewedAt,
	}
}

func (p *CardProgress) Apply(st srs.State) {
	p.Ease = st.Ease
	p.Repetitions = st.Repetitions
	p.IntervalDays = st.IntervalDays
	p.ConsecutiveCorrect = st.ConsecutiveCorrect
	p.Mastered = st.Mastered
	p.NextDueAt = st.NextDueAt
	p.LastReviewedAt = st.LastReviewedAt
}
