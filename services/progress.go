package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"achievement-wordle/apperrors"
	"achievement-wordle/logger"
	"achievement-wordle/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressService struct {
	DB     *gorm.DB
	Now    func() time.Time
	logger *logger.Logger
}

func NewProgressService(db *gorm.DB, log *logger.Logger) *ProgressService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProgressService{DB: db, Now: time.Now, logger: log}
}

// ProgressUpdate is the counter after an outcome was recorded.
type ProgressUpdate struct {
	Counter *models.ProgressCounter
	// BecameEligible is true only for the outcome that brought the
	// successful count to exactly the prize threshold.
	BecameEligible bool
}

// RecordOutcome counts one completed validation. Counters are incremented in
// the database, never computed from a value read earlier, so concurrent calls
// cannot lose updates.
func (s *ProgressService) RecordOutcome(ctx context.Context, participantID, date string, wasSuccessful bool) (*ProgressUpdate, error) {
	var inc int64
	if wasSuccessful {
		inc = 1
	}
	now := s.Now().UTC()
	col := func(name string) string { return fmt.Sprintf("%s.%s", models.ProgressCounterTable, name) }

	var counter models.ProgressCounter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh := &models.ProgressCounter{
			ID:                 uuid.NewString(),
			ParticipantID:      participantID,
			SuccessfulCount:    inc,
			TotalCount:         1,
			LastSubmissionDate: &date,
			EligibleForPrize:   inc >= models.PrizeThreshold,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "participant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_count":          gorm.Expr(col("total_count") + " + 1"),
				"successful_count":     gorm.Expr(col("successful_count")+" + ?", inc),
				"eligible_for_prize":   gorm.Expr(col("successful_count")+" + ? >= ?", inc, models.PrizeThreshold),
				"last_submission_date": date,
				"updated_at":           now,
			}),
		}).Create(fresh).Error; err != nil {
			return err
		}

		return tx.Where("participant_id = ?", participantID).First(&counter).Error
	})
	if err != nil {
		s.logger.Error("failed to update progress", "event", "ra_user_update_progress_error",
			"participant_id", participantID, "date", date, "successful", wasSuccessful, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update your progress")
	}

	update := &ProgressUpdate{
		Counter:        &counter,
		BecameEligible: wasSuccessful && counter.SuccessfulCount == models.PrizeThreshold,
	}
	if update.BecameEligible {
		s.logger.Info("🏆 participant reached the prize threshold",
			"participant_id", participantID, "successful", counter.SuccessfulCount)
	}
	return update, nil
}

// Get returns the participant's counter, or nil before their first outcome.
func (s *ProgressService) Get(ctx context.Context, participantID string) (*models.ProgressCounter, error) {
	var counter models.ProgressCounter
	err := s.DB.WithContext(ctx).Where("participant_id = ?", participantID).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to read progress", "event", "ra_user_get_progress_error",
			"participant_id", participantID, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load your progress")
	}
	return &counter, nil
}

// PendingPrizeNotifications lists eligible participants nobody has told yet.
func (s *ProgressService) PendingPrizeNotifications(ctx context.Context, limit int) ([]models.ProgressCounter, error) {
	if limit <= 0 {
		limit = 50
	}
	var counters []models.ProgressCounter
	if err := s.DB.WithContext(ctx).
		Where("eligible_for_prize = ? AND prize_notified = ?", true, false).
		Order("updated_at ASC").
		Limit(limit).
		Find(&counters).Error; err != nil {
		s.logger.Error("failed to list prize notifications", "event", "wordle_list_prize_pending_error", "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list prize notifications")
	}
	return counters, nil
}

// MarkPrizeNotified sets the one-way prize_notified flag. It returns false if
// the participant is not eligible or was already notified.
func (s *ProgressService) MarkPrizeNotified(ctx context.Context, participantID string) (bool, error) {
	result := s.DB.WithContext(ctx).
		Model(&models.ProgressCounter{}).
		Where("participant_id = ? AND eligible_for_prize = ? AND prize_notified = ?", participantID, true, false).
		Updates(map[string]interface{}{
			"prize_notified": true,
			"updated_at":     s.Now().UTC(),
		})
	if result.Error != nil {
		s.logger.Error("failed to mark prize notification", "event", "wordle_mark_prize_notified_error",
			"participant_id", participantID, "error", result.Error)
		return false, apperrors.Wrap(result.Error, apperrors.CodeDatabaseError, "failed to mark prize notification")
	}
	return result.RowsAffected > 0, nil
}
