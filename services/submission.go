package services

import (
	"context"
	"errors"
	"time"

	"achievement-wordle/apperrors"
	"achievement-wordle/logger"
	"achievement-wordle/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionService struct {
	DB     *gorm.DB
	Now    func() time.Time
	logger *logger.Logger
}

func NewSubmissionService(db *gorm.DB, log *logger.Logger) *SubmissionService {
	if log == nil {
		log = logger.Nop()
	}
	return &SubmissionService{DB: db, Now: time.Now, logger: log}
}

// Submit stores the participant's achievements for date. An existing row for
// the same (participant, date) is overwritten in place: new ID, new ids and
// refs, back to Pending, message and validated_at cleared.
func (s *SubmissionService) Submit(ctx context.Context, participantID, date string, achievementIDs []int64, achievementRefs []string) (*models.Submission, error) {
	if participantID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "A participant is required.")
	}
	if _, err := ParseDayKey(date); err != nil {
		return nil, err
	}
	if len(achievementIDs) != SubmissionSize || len(achievementRefs) != SubmissionSize {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "You must submit exactly 5 achievements.")
	}

	row := &models.Submission{
		ID:              uuid.NewString(),
		ParticipantID:   participantID,
		Date:            date,
		AchievementIDs:  datatypes.JSONSlice[int64](append([]int64(nil), achievementIDs...)),
		AchievementRefs: datatypes.JSONSlice[string](append([]string(nil), achievementRefs...)),
		ValidationState: models.ValidationPending,
		SubmittedAt:     s.Now().UTC(),
	}

	var stored *models.Submission
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "participant_id"}, {Name: "wordle_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"id",
				"achievement_ids",
				"achievement_refs",
				"validation_state",
				"validation_message",
				"submitted_at",
				"validated_at",
			}),
		}).Create(row).Error; err != nil {
			return err
		}

		var current models.Submission
		if err := tx.Where("participant_id = ? AND wordle_date = ?", participantID, date).First(&current).Error; err != nil {
			return err
		}
		stored = &current
		return nil
	})
	if err != nil {
		s.logger.Error("failed to save submission", "event", "ra_user_submit_achievements_error",
			"participant_id", participantID, "date", date, "achievement_ids", achievementIDs, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to save your submission")
	}

	s.logger.Info("submission stored", "participant_id", participantID, "date", date, "submission_id", stored.ID)
	return stored, nil
}

// MarkValidated moves the submission with this exact ID from Pending to Valid
// or Invalid. It returns false when that submission is no longer the live row
// (reset, or replaced by a resubmission) or was already validated.
func (s *SubmissionService) MarkValidated(ctx context.Context, submissionID string, valid bool, message string) (bool, error) {
	state := models.ValidationInvalid
	if valid {
		state = models.ValidationValid
	}
	now := s.Now().UTC()

	result := s.DB.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND validation_state = ?", submissionID, models.ValidationPending).
		Updates(map[string]interface{}{
			"validation_state":   state,
			"validation_message": message,
			"validated_at":       now,
		})
	if result.Error != nil {
		s.logger.Error("failed to mark submission", "event", "ra_user_mark_validated_error",
			"submission_id", submissionID, "valid", valid, "error", result.Error)
		return false, apperrors.Wrap(result.Error, apperrors.CodeDatabaseError, "failed to record the validation result")
	}

	if result.RowsAffected == 0 {
		s.logger.Warn("stale validation ignored", "submission_id", submissionID, "valid", valid)
		return false, nil
	}
	return true, nil
}

// Reset deletes the (participant, date) row. It returns false if there was
// nothing to delete.
func (s *SubmissionService) Reset(ctx context.Context, participantID, date string) (bool, error) {
	result := s.DB.WithContext(ctx).
		Where("participant_id = ? AND wordle_date = ?", participantID, date).
		Delete(&models.Submission{})
	if result.Error != nil {
		s.logger.Error("failed to delete submission", "event", "ra_user_delete_submission_error",
			"participant_id", participantID, "date", date, "error", result.Error)
		return false, apperrors.Wrap(result.Error, apperrors.CodeDatabaseError, "failed to reset your submission")
	}
	return result.RowsAffected > 0, nil
}

// Get returns the live submission for (participant, date), or nil.
func (s *SubmissionService) Get(ctx context.Context, participantID, date string) (*models.Submission, error) {
	var sub models.Submission
	err := s.DB.WithContext(ctx).
		Where("participant_id = ? AND wordle_date = ?", participantID, date).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to read submission", "event", "ra_user_get_submission_error",
			"participant_id", participantID, "date", date, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load your submission")
	}
	return &sub, nil
}

// ListForDate returns every live submission for date, oldest first.
func (s *SubmissionService) ListForDate(ctx context.Context, date string) ([]models.Submission, error) {
	var subs []models.Submission
	if err := s.DB.WithContext(ctx).
		Where("wordle_date = ?", date).
		Order("submitted_at ASC").
		Find(&subs).Error; err != nil {
		s.logger.Error("failed to list submissions", "event", "wordle_list_submissions_error", "date", date, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list submissions")
	}
	return subs, nil
}
