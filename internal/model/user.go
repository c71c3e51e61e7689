package model

import (
	"time"

	"github.com/google/uuid"
)

// User は学習者です。XP・レベル・連続学習日数もここで持ちます。
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	DisplayName   string     `gorm:"not null;default:''" json:"display_name"`
	XP            int        `gorm:"column:xp;not null;default:0" json:"xp"`
	Level         int        `gorm:"not null;default:1" json:"level"`
	StreakCount   int        `gorm:"not null;default:0" json:"streak_count"`
	LastStudyDate *time.Time `json:"last_study_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type ContextKey string

const (
	UserEmailKey ContextKey = "userEmail"
)

// RegisterRequest は新規登録APIのリクエストボディの構造体 (DTO)
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
}

// UserResponse はクライアントに返すユーザー情報の構造体
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Level:       u.Level,
		CreatedAt:   u.CreatedAt,
	}
}
