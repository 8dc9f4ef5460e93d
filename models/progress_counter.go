package models

import (
	"time"
)

// PrizeThreshold is the number of successful days that makes a participant
// eligible for the event prize.
const PrizeThreshold = 30

const ProgressCounterTable = "wordle_progress_counters"

// ProgressCounter tracks cumulative submission outcomes per participant.
// The counters only change through atomic increments; see
// services.ProgressService.RecordOutcome.
type ProgressCounter struct {
	ID            string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ParticipantID string `gorm:"uniqueIndex;not null" json:"participant_id"`

	SuccessfulCount    int64   `gorm:"not null;default:0" json:"successful_count"`
	TotalCount         int64   `gorm:"not null;default:0" json:"total_count"`
	LastSubmissionDate *string `gorm:"type:varchar(10)" json:"last_submission_date,omitempty"`

	EligibleForPrize bool `gorm:"not null;default:false" json:"eligible_for_prize"`
	PrizeNotified    bool `gorm:"not null;default:false" json:"prize_notified"`

	Timestamps
}

func (ProgressCounter) TableName() string { return ProgressCounterTable }

// RemainingForPrize is how many more successful days are needed, never negative.
func (p *ProgressCounter) RemainingForPrize() int64 {
	if p == nil {
		return PrizeThreshold
	}
	if remaining := PrizeThreshold - p.SuccessfulCount; remaining > 0 {
		return remaining
	}
	return 0
}

// Timestamps adds GORM auto-times. No soft delete: counters are never removed
// and submissions are removed for real on reset.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
