package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ValidationState is stored as 0 / 1 / -1 so existing rows from the bot keep
// their meaning.
type ValidationState int8

const (
	ValidationPending ValidationState = 0
	ValidationValid   ValidationState = 1
	ValidationInvalid ValidationState = -1
)

func (s ValidationState) String() string {
	switch s {
	case ValidationPending:
		return "pending"
	case ValidationValid:
		return "valid"
	case ValidationInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("unknown(%d)", int8(s))
	}
}

func (s ValidationState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ValidationState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "pending":
		*s = ValidationPending
	case "valid":
		*s = ValidationValid
	case "invalid":
		*s = ValidationInvalid
	default:
		return fmt.Errorf("unknown validation state %q", name)
	}
	return nil
}

// Submission is a participant's five achievements for one day. The row is
// keyed by (participant, date); ID changes on every resubmission so a late
// validation of an older attempt can be told apart from the live one.
type Submission struct {
	ID                string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ParticipantID     string                      `gorm:"not null;uniqueIndex:ux_submission_participant_date,priority:1" json:"participant_id"`
	Date              string                      `gorm:"column:wordle_date;type:varchar(10);not null;uniqueIndex:ux_submission_participant_date,priority:2" json:"date"`
	AchievementIDs    datatypes.JSONSlice[int64]  `gorm:"not null" json:"achievement_ids"`
	AchievementRefs   datatypes.JSONSlice[string] `gorm:"not null" json:"achievement_refs"`
	ValidationState   ValidationState             `gorm:"not null" json:"validation_state"`
	ValidationMessage *string                     `json:"validation_message,omitempty"`
	SubmittedAt       time.Time                   `gorm:"not null" json:"submitted_at"`
	ValidatedAt       *time.Time                  `json:"validated_at,omitempty"`
}

func (Submission) TableName() string { return "wordle_submissions" }
