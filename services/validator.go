package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"achievement-wordle/logger"
)

// ValidationOutcome tags why a validation ended the way it did.
type ValidationOutcome int

const (
	// ValidationVerified: every achievement was earned on the date.
	ValidationVerified ValidationOutcome = iota
	// ValidationMissing: at least one achievement was not earned on the date.
	ValidationMissing
	// ValidationUnavailable: the platform could not be asked. Transient.
	ValidationUnavailable
	// ValidationWrongCount: not exactly five achievements were given.
	ValidationWrongCount
)

func (o ValidationOutcome) String() string {
	switch o {
	case ValidationVerified:
		return "verified"
	case ValidationMissing:
		return "missing"
	case ValidationUnavailable:
		return "unavailable"
	case ValidationWrongCount:
		return "wrong_count"
	default:
		return "unknown"
	}
}

type ValidationResult struct {
	Outcome ValidationOutcome
	Message string
	// Titles is set only for ValidationVerified, in submission order.
	Titles []string
	// Missing lists submitted ids not earned on the date, in submission order.
	Missing []int64
}

func (r ValidationResult) Valid() bool {
	return r.Outcome == ValidationVerified
}

const (
	verifiedMessage    = "All achievements were verified as earned on the specified date!"
	unavailableMessage = "Could not retrieve achievement data from RetroAchievements (temporary problem, nothing was checked). Please try again later."
)

// SubmissionValidator confirms achievements were earned on a given day. It
// does not look at titles versus letters; see MatchLetters.
type SubmissionValidator struct {
	Platform AchievementPlatform
	logger   *logger.Logger
}

func NewSubmissionValidator(platform AchievementPlatform, log *logger.Logger) *SubmissionValidator {
	if log == nil {
		log = logger.Nop()
	}
	return &SubmissionValidator{Platform: platform, logger: log}
}

func (v *SubmissionValidator) Validate(ctx context.Context, username string, achievementIDs []int64, date string) ValidationResult {
	if len(achievementIDs) != SubmissionSize {
		return ValidationResult{
			Outcome: ValidationWrongCount,
			Message: fmt.Sprintf("You must submit exactly %d achievements.", SubmissionSize),
		}
	}

	earned, err := v.Platform.AchievementsEarnedOn(ctx, username, date)
	if err != nil {
		v.logger.Warn("achievement lookup failed", "event", "ra_user_validate_achievements_error",
			"ra_username", username, "achievement_ids", achievementIDs, "date", date, "error", err)
		return ValidationResult{Outcome: ValidationUnavailable, Message: unavailableMessage}
	}

	titles := make(map[int64]string, len(earned))
	for _, a := range earned {
		if _, seen := titles[a.AchievementID]; !seen {
			titles[a.AchievementID] = a.Title
		}
	}

	var missing []int64
	found := make([]string, 0, len(achievementIDs))
	for _, id := range achievementIDs {
		title, ok := titles[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		found = append(found, title)
	}

	if len(missing) > 0 {
		return ValidationResult{
			Outcome: ValidationMissing,
			Message: fmt.Sprintf("The following achievement(s) were not earned on %s: %s", date, joinIDs(missing)),
			Missing: missing,
		}
	}

	return ValidationResult{Outcome: ValidationVerified, Message: verifiedMessage, Titles: found}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
