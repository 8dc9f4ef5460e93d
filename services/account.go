package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"achievement-wordle/apperrors"
	"achievement-wordle/logger"
	"achievement-wordle/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountService struct {
	DB       *gorm.DB
	Platform AchievementPlatform
	Now      func() time.Time
	logger   *logger.Logger
}

func NewAccountService(db *gorm.DB, platform AchievementPlatform, log *logger.Logger) *AccountService {
	if log == nil {
		log = logger.Nop()
	}
	return &AccountService{DB: db, Platform: platform, Now: time.Now, logger: log}
}

// Verify reports whether username exists on the platform. Lookup failures
// count as "does not exist".
func (s *AccountService) Verify(ctx context.Context, username string) bool {
	username = strings.TrimSpace(username)
	if username == "" {
		return false
	}
	exists, err := s.Platform.ProfileExists(ctx, username)
	if err != nil {
		s.logger.Warn("profile lookup failed", "event", "ra_user_verify_error", "ra_username", username, "error", err)
		return false
	}
	return exists
}

// Link binds participantID to username after checking the profile exists.
// Re-linking overwrites the username and verification fields; linked_at keeps
// the date of the first link.
func (s *AccountService) Link(ctx context.Context, participantID, username string) (*models.AccountLink, error) {
	username = strings.TrimSpace(username)
	if participantID == "" || username == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "A participant and a RetroAchievements username are required.")
	}

	if !s.Verify(ctx, username) {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf(
			"The RetroAchievements username %q could not be found. Please check your username and try again.", username))
	}

	now := s.Now().UTC()
	link := &models.AccountLink{
		ID:               uuid.NewString(),
		ParticipantID:    participantID,
		ExternalUsername: username,
		LinkedAt:         now,
		LastVerifiedAt:   &now,
		Verified:         true,
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "participant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"external_username", "last_verified_at", "verified"}),
		}).
		Create(link).Error
	if err != nil {
		s.logger.Error("failed to link account", "event", "ra_user_connect_error",
			"participant_id", participantID, "ra_username", username, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to connect your account")
	}

	stored, err := s.Lookup(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "account link vanished after upsert")
	}
	s.logger.Info("account linked", "participant_id", participantID, "ra_username", username)
	return stored, nil
}

// Lookup returns the participant's link, or nil if they never linked.
func (s *AccountService) Lookup(ctx context.Context, participantID string) (*models.AccountLink, error) {
	var link models.AccountLink
	err := s.DB.WithContext(ctx).Where("participant_id = ?", participantID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to read account link", "event", "ra_user_get_connection_error",
			"participant_id", participantID, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load your account link")
	}
	return &link, nil
}
