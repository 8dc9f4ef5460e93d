package models

import "time"

// AccountLink binds a chat participant to a RetroAchievements username.
type AccountLink struct {
	ID               string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ParticipantID    string     `gorm:"uniqueIndex;not null" json:"participant_id"`
	ExternalUsername string     `gorm:"not null" json:"external_username"`
	LinkedAt         time.Time  `gorm:"not null" json:"linked_at"`
	LastVerifiedAt   *time.Time `json:"last_verified_at,omitempty"`
	Verified         bool       `gorm:"not null;default:false" json:"verified"`
}

func (AccountLink) TableName() string { return "wordle_account_links" }
