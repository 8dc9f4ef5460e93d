package models

import (
	"time"

	"gorm.io/datatypes"
)

// DailyWord is the five-letter target for one calendar day (UTC, YYYY-MM-DD).
type DailyWord struct {
	ID        string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Date      string                      `gorm:"type:varchar(10);uniqueIndex;not null" json:"date"`
	Word      string                      `gorm:"type:varchar(5);not null" json:"word"`
	Letters   datatypes.JSONSlice[string] `gorm:"not null" json:"letters"`
	Source    string                      `gorm:"type:varchar(16);not null;default:'api'" json:"source"` // api, fallback, admin
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}

func (DailyWord) TableName() string { return "wordle_daily_words" }

const (
	WordSourceAPI      = "api"
	WordSourceFallback = "fallback"
	WordSourceAdmin    = "admin"
)
