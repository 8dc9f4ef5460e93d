package services

import (
	"context"
	"fmt"
	"time"

	"achievement-wordle/apperrors"
	"achievement-wordle/logger"
	"achievement-wordle/models"

	"github.com/gosimple/slug"
)

// ObjectStore is where daily archives are written (R2 in production).
type ObjectStore interface {
	PutJSON(ctx context.Context, key string, v interface{}) error
}

// DailyArchive is the JSON document written for one finished day.
type DailyArchive struct {
	Event       string              `json:"event"`
	Date        string              `json:"date"`
	Word        *models.DailyWord   `json:"word,omitempty"`
	Submissions []models.Submission `json:"submissions"`
	ArchivedAt  time.Time           `json:"archived_at"`
}

type DailyArchiver struct {
	Words       *DailyWordService
	Submissions *SubmissionService
	Store       ObjectStore
	EventName   string
	Now         func() time.Time
	logger      *logger.Logger
}

func NewDailyArchiver(words *DailyWordService, submissions *SubmissionService, store ObjectStore, eventName string, log *logger.Logger) *DailyArchiver {
	if log == nil {
		log = logger.Nop()
	}
	return &DailyArchiver{
		Words:       words,
		Submissions: submissions,
		Store:       store,
		EventName:   eventName,
		Now:         time.Now,
		logger:      log,
	}
}

// KeyFor is the object key for date, e.g. wordle-achievement-event/2024-03-01.json.
func (a *DailyArchiver) KeyFor(date string) string {
	return fmt.Sprintf("%s/%s.json", slug.Make(a.EventName), date)
}

// ArchiveDay snapshots date's word and submissions. A day without a word is
// still archived so gaps are visible.
func (a *DailyArchiver) ArchiveDay(ctx context.Context, date string) (string, error) {
	if _, err := ParseDayKey(date); err != nil {
		return "", err
	}

	word, err := a.Words.WordForDate(ctx, date)
	if err != nil {
		return "", err
	}
	subs, err := a.Submissions.ListForDate(ctx, date)
	if err != nil {
		return "", err
	}
	if subs == nil {
		subs = []models.Submission{}
	}

	key := a.KeyFor(date)
	doc := DailyArchive{
		Event:       a.EventName,
		Date:        date,
		Word:        word,
		Submissions: subs,
		ArchivedAt:  a.Now().UTC(),
	}
	if err := a.Store.PutJSON(ctx, key, doc); err != nil {
		a.logger.Error("failed to archive day", "event", "wordle_archive_error", "date", date, "error", err)
		return "", apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "failed to archive "+date)
	}

	a.logger.Info("day archived", "date", date, "key", key, "submissions", len(subs))
	return key, nil
}
