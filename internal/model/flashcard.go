package model

import (
	"time"

	"github.com/google/uuid"
)

// FlashcardSet はグループに属するカードの集まりです。
type FlashcardSet struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (FlashcardSet) TableName() string {
	return "flashcard_sets"
}

// Flashcard は4択問題にもなるカードです。Difficulty は復習結果で変わります。
type Flashcard struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	SetID              uuid.UUID `gorm:"type:uuid;not null;index"`
	GroupID            uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByID        uuid.UUID `gorm:"type:uuid"`
	Question           string    `gorm:"type:text;not null"`
	Answer             string    `gorm:"type:text;not null"`
	Explanation        string    `gorm:"type:text"`
	Difficulty         int       `gorm:"not null;default:3"`
	Tags               []string  `gorm:"type:text;serializer:json"`
	Options            []string  `gorm:"type:text;serializer:json"`
	CorrectOptionIndex *int
	UsageCount         int `gorm:"not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (Flashcard) TableName() string {
	return "flashcards"
}

// HasOptions は選択肢が揃っていて正解インデックスが有効かを返します。
func (f *Flashcard) HasOptions() bool {
	return len(f.Options) > 0 && f.CorrectOptionIndex != nil &&
		*f.CorrectOptionIndex >= 0 && *f.CorrectOptionIndex < len(f.Options)
}

// カード作成リクエストDTO
type CreateFlashcardRequest struct {
	Question           string   `json:"question" validate:"required,max=1000"`
	Answer             string   `json:"answer" validate:"required,max=1000"`
	Explanation        string   `json:"explanation" validate:"omitempty,max=2000"`
	Difficulty         *int     `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Tags               []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
	Options            []string `json:"options" validate:"omitempty,min=2,max=6,dive,required,max=500"`
	CorrectOptionIndex *int     `json:"correct_option_index" validate:"omitempty,min=0"`
}

type FlashcardResponse struct {
	ID                 uuid.UUID `json:"id"`
	SetID              uuid.UUID `json:"set_id"`
	Question           string    `json:"question"`
	Answer             string    `json:"answer"`
	Explanation        string    `json:"explanation,omitempty"`
	Difficulty         int       `json:"difficulty"`
	Tags               []string  `json:"tags"`
	Options            []string  `json:"options"`
	CorrectOptionIndex *int      `json:"correct_option_index,omitempty"`
	UsageCount         int       `json:"usage_count"`
	CreatedAt          time.Time `json:"created_at"`
}

func NewFlashcardResponse(f *Flashcard) *FlashcardResponse {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	options := f.Options
	if options == nil {
		options = []string{}
	}
	return &FlashcardResponse{
		ID:                 f.ID,
		SetID:              f.SetID,
		Question:           f.Question,
		Answer:             f.Answer,
		Explanation:        f.Explanation,
		Difficulty:         f.Difficulty,
		Tags:               tags,
		Options:            options,
		CorrectOptionIndex: f.CorrectOptionIndex,
		UsageCount:         f.UsageCount,
		CreatedAt:          f.CreatedAt,
	}
}

type FlashcardPage struct {
	Items []*FlashcardResponse `json:"items"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
	Total int64                `json:"total"`
}
