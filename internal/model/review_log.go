package model

import (
	"time"

	"github.com/google/uuid"
)

// ReviewLog は1回の復習を記録する追記専用のログです。
type ReviewLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	GroupID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SetID       uuid.UUID `gorm:"type:uuid;not null"`
	FlashcardID uuid.UUID `gorm:"type:uuid;not null;index"`
	Grade       int       `gorm:"not null"`
	XPAwarded   int       `gorm:"column:xp_awarded;not null;default:0"`
	ReviewedAt  time.Time `gorm:"not null;index"`
}

func (ReviewLog) TableName() string {
	return "review_logs"
}
