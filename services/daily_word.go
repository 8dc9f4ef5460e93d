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
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invalidWordMessage = "The word must be exactly 5 letters and contain only alphabetic characters."

// resolveTimeout bounds a shared resolution once it no longer follows the
// first caller's context.
const resolveTimeout = 30 * time.Second

type DailyWordService struct {
	DB     *gorm.DB
	Source WordSource
	Now    func() time.Time
	logger *logger.Logger

	// inflight collapses concurrent first-of-day resolutions in this process.
	// Cross-process races are settled by the unique date index.
	inflight singleflight.Group
}

func NewDailyWordService(db *gorm.DB, source WordSource, log *logger.Logger) *DailyWordService {
	if log == nil {
		log = logger.Nop()
	}
	return &DailyWordService{DB: db, Source: source, Now: time.Now, logger: log}
}

// Today returns the current UTC day key.
func (s *DailyWordService) Today() string {
	return TodayKey(s.Now())
}

// Resolve returns the word for date, creating it on first use. Once stored,
// a day's word is returned unchanged by every later call.
func (s *DailyWordService) Resolve(ctx context.Context, date string) (*models.DailyWord, error) {
	day, err := ParseDayKey(date)
	if err != nil {
		return nil, err
	}

	existing, err := s.WordForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	v, err, _ := s.inflight.Do(date, func() (interface{}, error) {
		// Waiters share this result, so one caller's cancellation must not fail them all.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()

		// Another caller may have finished while we waited on the read.
		if existing, err := s.WordForDate(ctx, date); err != nil || existing != nil {
			return existing, err
		}

		source := models.WordSourceAPI
		word, ok := "", false
		if s.Source != nil {
			word, ok = s.Source.FetchWord(ctx)
		}
		if ok {
			word, ok = NormalizeWord(word)
		}
		if !ok {
			word = FallbackWord(day)
			source = models.WordSourceFallback
			s.logger.Warn("using fallback word", "event", "wordle_fallback_used", "date", date, "word", word)
		}

		return s.insertOrReread(ctx, &models.DailyWord{
			ID:      uuid.NewString(),
			Date:    date,
			Word:    word,
			Letters: datatypes.JSONSlice[string](LettersOf(word)),
			Source:  source,
		})
	})
	if err != nil {
		return nil, err
	}

	shared := v.(*models.DailyWord)
	out := *shared
	out.Letters = append(datatypes.JSONSlice[string]{}, shared.Letters...)
	return &out, nil
}

// insertOrReread inserts candidate unless the date already has a word, then
// returns whatever is stored. The loser of a race sees the winner's word.
func (s *DailyWordService) insertOrReread(ctx context.Context, candidate *models.DailyWord) (*models.DailyWord, error) {
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoNothing: true,
		}).
		Create(candidate).Error
	if err != nil {
		s.logger.Error("failed to insert daily word", "event", "wordle_insert_word_error", "date", candidate.Date, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to store today's word")
	}

	stored, err := s.WordForDate(ctx, candidate.Date)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "daily word vanished after insert")
	}

	if stored.ID == candidate.ID {
		s.logger.Info("daily word created", "date", stored.Date, "word", stored.Word, "source", stored.Source)
	}
	return stored, nil
}

// Lookup is the read path for admin views. Today's word is resolved like any
// participant request; other days are only read, never created.
func (s *DailyWordService) Lookup(ctx context.Context, date string) (*models.DailyWord, error) {
	if _, err := ParseDayKey(date); err != nil {
		return nil, err
	}
	if date == s.Today() {
		return s.Resolve(ctx, date)
	}

	word, err := s.WordForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if word == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("No word has been set for %s.", date))
	}
	return word, nil
}

// OverrideWord replaces today's word and letters, creating the row if needed.
// Any other date is refused so validated submissions keep matching their word.
func (s *DailyWordService) OverrideWord(ctx context.Context, date, rawWord string) (*models.DailyWord, error) {
	if _, err := ParseDayKey(date); err != nil {
		return nil, err
	}
	if today := s.Today(); date != today {
		return nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("Only today's word (%s) can be changed.", today))
	}
	word, ok := NormalizeWord(rawWord)
	if !ok {
		return nil, apperrors.New(apperrors.CodeInvalidInput, invalidWordMessage)
	}

	row := &models.DailyWord{
		ID:      uuid.NewString(),
		Date:    date,
		Word:    word,
		Letters: datatypes.JSONSlice[string](LettersOf(word)),
		Source:  models.WordSourceAdmin,
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"word", "letters", "source"}),
		}).
		Create(row).Error
	if err != nil {
		s.logger.Error("failed to set daily word", "event", "wordle_set_today_word_error", "date", date, "word", word, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "could not set today's word")
	}

	s.logger.Info("daily word overridden", "date", date, "word", word)
	stored, err := s.WordForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "daily word vanished after override")
	}
	return stored, nil
}

// WordForDate returns the stored word for date, or nil if none exists yet.
func (s *DailyWordService) WordForDate(ctx context.Context, date string) (*models.DailyWord, error) {
	var word models.DailyWord
	err := s.DB.WithContext(ctx).Where("date = ?", date).First(&word).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to read daily word", "event", "wordle_get_word_for_date_error", "date", date, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "could not load the daily word")
	}
	return &word, nil
}
